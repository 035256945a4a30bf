package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	bts, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, fmt.Errorf("encode error: %w", err))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(bts) //nolint:errcheck
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}

	return nil
}
