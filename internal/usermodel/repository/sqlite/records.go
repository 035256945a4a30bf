package sqlite

import "github.com/Leopold1975/usermodel/internal/usermodel/domain/models"

type roleRecord struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null;uniqueIndex"`
}

func (roleRecord) TableName() string { return "roles" }

type userRecord struct {
	ID           int64             `gorm:"primaryKey;autoIncrement:false"`
	Username     string            `gorm:"not null;uniqueIndex"`
	PasswordHash string            `gorm:"not null"`
	PrimaryEmail string            `gorm:"not null"`
	Useremails   []useremailRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UserRoles    []userRoleRecord  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userRecord) TableName() string { return "users" }

type useremailRecord struct {
	ID     int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID int64  `gorm:"not null;index"`
	Email  string `gorm:"not null"`
}

func (useremailRecord) TableName() string { return "useremails" }

type userRoleRecord struct {
	UserID int64      `gorm:"primaryKey;autoIncrement:false"`
	RoleID int64      `gorm:"primaryKey;autoIncrement:false;index"`
	Role   roleRecord `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
}

func (userRoleRecord) TableName() string { return "user_roles" }

// sequenceRecord backs the id sequence shared by every entity table.
type sequenceRecord struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

func (sequenceRecord) TableName() string { return "sequences" }

func (r roleRecord) toModel() models.Role {
	return models.Role{
		ID:   r.ID,
		Name: r.Name,
	}
}

func (r userRecord) toModel() models.User {
	u := models.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		PrimaryEmail: r.PrimaryEmail,
		Useremails:   make([]models.Useremail, 0, len(r.Useremails)),
		Roles:        make([]models.UserRole, 0, len(r.UserRoles)),
	}

	for _, ue := range r.Useremails {
		u.Useremails = append(u.Useremails, models.Useremail{ID: ue.ID, Email: ue.Email})
	}

	for _, ur := range r.UserRoles {
		u.Roles = append(u.Roles, models.UserRole{Role: ur.Role.toModel()})
	}

	return u
}
