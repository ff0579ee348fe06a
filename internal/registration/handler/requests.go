package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"

	"guestgate/internal/platform/httputil"
	dErrors "guestgate/pkg/domainerrors"
)

// decodeJSON decodes the request body into T, writing the validation
// envelope on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return req, false
	}
	return req, true
}

type verifyRequest struct {
	Email string
	Phone string
}

func (req verifyRequest) Validate() error {
	email := strings.TrimSpace(req.Email)
	if email != "" && (!govalidator.StringLength(email, "3", "255") || !govalidator.IsEmail(email)) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if len(req.Phone) > 64 {
		return dErrors.New(dErrors.CodeValidation, "invalid phone")
	}
	return nil
}

type referralRequest struct {
	ReferrerID   string `json:"referrer_id"`
	InviteeName  string `json:"invitee_name"`
	InviteePhone string `json:"invitee_phone"`
	InviteeEmail string `json:"invitee_email"`
}

func (req referralRequest) Validate() error {
	if !govalidator.StringLength(req.ReferrerID, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "referrer_id is required")
	}
	if req.InviteePhone == "" && req.InviteeEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "invitee phone or email is required")
	}
	if req.InviteeEmail != "" && !govalidator.IsEmail(req.InviteeEmail) {
		return dErrors.New(dErrors.CodeValidation, "invalid invitee_email")
	}
	if len(req.InviteePhone) > 64 {
		return dErrors.New(dErrors.CodeValidation, "invalid invitee_phone")
	}
	if len(req.InviteeName) > 255 {
		return dErrors.New(dErrors.CodeValidation, "invitee_name too long")
	}
	return nil
}

type interestRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

func (req interestRequest) Validate() error {
	if !govalidator.StringLength(req.ID, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "id is required")
	}
	if len(req.Name) > 255 || len(req.Nickname) > 255 {
		return dErrors.New(dErrors.CodeValidation, "name too long")
	}
	return nil
}
