// Package httputil maps domain errors onto the wire and writes JSON
// responses. Handlers never hand-roll status codes; the error's code decides.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "guestgate/pkg/domainerrors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:       http.StatusBadRequest,
	dErrors.CodeNotFound:         http.StatusNotFound,
	dErrors.CodeQuotaExhausted:   http.StatusConflict,
	dErrors.CodeStoreUnavailable: http.StatusServiceUnavailable,
	dErrors.CodeDeliveryFailure:  http.StatusBadGateway,
	dErrors.CodeInternal:         http.StatusInternalServerError,
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope for err. Unknown errors are reported
// as internal without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		code = dErrors.CodeInternal
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, map[string]string{"error": string(code)})
}
