package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Leopold1975/usermodel/internal/usermodel/api/oapi"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
)

// (GET /users/users).
func (s *Server) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.FindAll(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, users)
}

// (GET /users/user/{userid}).
func (s *Server) GetUserById(w http.ResponseWriter, r *http.Request, userid int64) { //nolint:revive,stylecheck
	u, err := s.userService.FindUserByID(r.Context(), userid)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, u)
}

// GetUserByName answers 404 when no username contains the fragment.
// (GET /users/user/name/{userName}).
func (s *Server) GetUserByName(w http.ResponseWriter, r *http.Request, userName string) {
	users, err := s.userService.FindByNameContaining(r.Context(), userName)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if len(users) == 0 {
		s.writeError(w, fmt.Errorf("%w: user with name %s", models.ErrNotFound, userName))

		return
	}

	s.writeJSON(w, http.StatusOK, users)
}

// (GET /users/user/name/like/{userName}).
func (s *Server) GetUserLikeName(w http.ResponseWriter, r *http.Request, userName string) {
	users, err := s.userService.FindByNameContaining(r.Context(), userName)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, users)
}

// (POST /users/user).
func (s *Server) AddNewUser(w http.ResponseWriter, r *http.Request) {
	var body oapi.AddNewUserJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	u, err := s.userService.Save(r.Context(), toCreateRequest(body))
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Location", "/users/user/"+strconv.FormatInt(u.ID, 10))
	s.writeJSON(w, http.StatusCreated, u)
}

// (PUT /users/user/{userid}).
func (s *Server) UpdateFullUser(w http.ResponseWriter, r *http.Request, userid int64) {
	var body oapi.UpdateFullUserJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	u, err := s.userService.UpdateFull(r.Context(), userid, toCreateRequest(body))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, u)
}

// (PATCH /users/user/{userid}).
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request, userid int64) {
	var body oapi.UpdateUserJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	u, err := s.userService.Update(r.Context(), userid, toUpdateRequest(body))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, u)
}

// (DELETE /users/user/{userid}).
func (s *Server) DeleteUserById(w http.ResponseWriter, r *http.Request, userid int64) { //nolint:revive,stylecheck
	if err := s.userService.Delete(r.Context(), userid); err != nil {
		s.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusOK)
}
