package dto

import (
	"time"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// ProfileRequest updates member profile fields. Omitted fields are kept.
type ProfileRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	Gender      *string `json:"gender"`
	TrainerID   *string `json:"trainer_id"`
}

// AccountRequest registers a member or trainer.
type AccountRequest struct {
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phone_number"`
	Gender         string  `json:"gender"`
	Specialization string  `json:"specialization"`
	TrainerID      *string `json:"trainer_id"`
}

// MemberResponse never exposes the password hash.
type MemberResponse struct {
	ID              string        `json:"id"`
	Username        string        `json:"username"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	PhoneNumber     string        `json:"phone_number"`
	Gender          domain.Gender `json:"gender"`
	TrainerID       *string       `json:"trainer_id"`
	ProfileComplete bool          `json:"profile_complete"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TrainerResponse is the public trainer view.
type TrainerResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Specialization string    `json:"specialization"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMemberResponse maps a member to its response body.
func NewMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		ID:              m.ID,
		Username:        m.Username,
		Name:            m.Name,
		Email:           m.Email,
		PhoneNumber:     m.PhoneNumber,
		Gender:          m.Gender,
		TrainerID:       m.TrainerID,
		ProfileComplete: m.ProfileComplete,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NewTrainerResponse(t *domain.Trainer) TrainerResponse {
	return TrainerResponse{
		ID:             t.ID,
		Username:       t.Username,
		Name:           t.Name,
		Email:          t.Email,
		Specialization: t.Specialization,
		CreatedAt:      t.CreatedAt,
	}
}
