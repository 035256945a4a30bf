package server

import (
	"net/http"
	"strconv"

	"github.com/Leopold1975/usermodel/internal/usermodel/api/oapi"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/roleservice"
)

func (s *Server) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.roleService.FindAll(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, roles)
}

func (s *Server) GetRoleById(w http.ResponseWriter, r *http.Request, roleid int64) { //nolint:revive,stylecheck
	role, err := s.roleService.FindRoleByID(r.Context(), roleid)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, role)
}

func (s *Server) GetRoleByName(w http.ResponseWriter, r *http.Request, roleName string) {
	role, err := s.roleService.FindByName(r.Context(), roleName)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, role)
}

func (s *Server) AddNewRole(w http.ResponseWriter, r *http.Request) {
	var body oapi.AddNewRoleJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	role, err := s.roleService.Save(r.Context(), roleservice.RoleRequest{Name: body.Name})
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Location", "/roles/role/"+strconv.FormatInt(role.ID, 10))
	s.writeJSON(w, http.StatusCreated, role)
}

func (s *Server) PutUpdateRole(w http.ResponseWriter, r *http.Request, roleid int64) {
	var body oapi.PutUpdateRoleJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	role, err := s.roleService.Update(r.Context(), roleid, roleservice.RoleRequest{Name: body.Name})
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, role)
}

func (s *Server) DeleteRoleById(w http.ResponseWriter, r *http.Request, roleid int64) { //nolint:revive,stylecheck
	if err := s.roleService.Delete(r.Context(), roleid); err != nil {
		s.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusOK)
}
