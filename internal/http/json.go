package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/familiez/familiez-auth/internal/errors"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code int
	// ErrCode defaults to the error's AppError code.
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	errCode := p.ErrCode
	if errCode == "" {
		errCode = string(apperrors.GetCode(p.Err))
	}
	if errCode == "" {
		errCode = string(apperrors.ErrCodeInternal)
	}
	WriteJSON(w, p.Code, map[string]string{"error": errCode, "message": p.Err.Error()})
}
