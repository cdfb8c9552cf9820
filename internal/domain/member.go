package domain

import "time"

// Gender values accepted on member profiles.
type Gender string

const (
	GenderMale        Gender = "MALE"
	GenderFemale      Gender = "FEMALE"
	GenderUnspecified Gender = "UNSPECIFIED"
)

// ParseGender maps free-form provider values onto a Gender.
func ParseGender(raw string) Gender {
	switch Gender(upper(raw)) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	default:
		return GenderUnspecified
	}
}

// Member is a gym member. Members authenticate with the MEMBER role.
type Member struct {
	Principal
	Name            string
	Email           string
	PhoneNumber     string
	Gender          Gender
	TrainerID       *string
	ProfileComplete bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Trainer coaches members.
type Trainer struct {
	Principal
	Name           string
	Email          string
	Specialization string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Admin manages trainers and members.
type Admin struct {
	Principal
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
