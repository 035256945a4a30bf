package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Leopold1975/usermodel/internal/usermodel/api/oapi"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
)

var errMalformed = errors.New("malformed request body")

var titles = map[int]string{
	http.StatusBadRequest:          "Validation Failed",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Resource Not Found",
	http.StatusConflict:            "Resource Conflict",
	http.StatusInternalServerError: "Internal Server Error",
}

func statusOf(err error) int {
	var ve *models.ValidationError

	switch {
	case errors.As(err, &ve), errors.Is(err, errMalformed):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrRoleInUse):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusOf(err)

	e := oapi.Error{ //nolint:exhaustruct
		Title:     titles[code],
		Status:    code,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	}

	if code == http.StatusInternalServerError {
		s.lg.Errorf("internal error: %s", err.Error())
		e.Error = "internal server error"
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		for _, f := range ve.Fields {
			e.Errors = append(e.Errors, oapi.FieldError{Field: f.Field, Message: f.Message})
		}
	}

	bts, errM := json.Marshal(e)
	if errM != nil {
		bts = []byte(`{"title":"Internal Server Error","status":500,"error":"marshal error"}`)
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(bts) //nolint:errcheck
}

// paramError reports a path parameter that failed to bind.
func (s *Server) paramError(w http.ResponseWriter, _ *http.Request, err error) {
	ve := &models.ValidationError{}

	var pe *oapi.InvalidParamFormatError
	if errors.As(err, &pe) {
		ve.Add(pe.ParamName, "must be an integer")
	} else {
		ve.Add("path", err.Error())
	}

	s.writeError(w, fmt.Errorf("invalid path parameter: %w", ve))
}
