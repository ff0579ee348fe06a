package handler

import (
	"time"

	"guestgate/internal/registration/models"
)

type registrantResponse struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Tier                 string    `json:"tier"`
	DisplayName          string    `json:"display_name,omitempty"`
	Nickname             string    `json:"nickname,omitempty"`
	ReferredBy           string    `json:"referred_by,omitempty"`
	InvitationsRemaining int       `json:"invitations_remaining"`
	CreatedAt            time.Time `json:"created_at"`
}

func fromRegistrant(r *models.Registrant) registrantResponse {
	return registrantResponse{
		ID:                   r.ID,
		Email:                r.Email,
		Phone:                r.Phone,
		Tier:                 string(r.Tier),
		DisplayName:          r.DisplayName,
		Nickname:             r.Nickname,
		ReferredBy:           r.ReferredBy,
		InvitationsRemaining: r.InvitationsRemaining,
		CreatedAt:            r.CreatedAt,
	}
}

type referralResponse struct {
	OK                   bool `json:"ok"`
	RemainingInvitations int  `json:"remaining_invitations"`
}
