package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/GregMSThompson/findash-backend/internal/errs"
)

// maxBodyBytes caps request bodies, including dashboard imports.
const maxBodyBytes = 4 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewValidationError("could not read request body")
	}
	return b, nil
}
