package auth

import (
	"net/http"

	"github.com/gymcore/gym-gateway/internal/domain"
)

var (
	everyone       = []domain.Role{domain.RoleMember, domain.RoleTrainer, domain.RoleAdmin}
	memberOrAdmin  = []domain.Role{domain.RoleMember, domain.RoleAdmin}
	trainerOrAdmin = []domain.Role{domain.RoleTrainer, domain.RoleAdmin}
)

// DefaultRules is the gateway's route policy. Order matters: specific rules
// come first and the trailing catch-all requires ADMIN, so anything not
// listed fails closed. Trainer mutations are left to the catch-all.
func DefaultRules() []Rule {
	return []Rule{
		PermitAll(MethodAny, "/error"),
		PermitAll(MethodAny, "/docs/**"),
		PermitAll(MethodAny, "/login"),
		PermitAll(MethodAny, "/health/**"),
		PermitAll(MethodAny, "/oauth2/**"),
		PermitAll(http.MethodOptions, "/**"),
		PermitAll(http.MethodGet, "/api/v1/news/**"),

		Permit(http.MethodGet, "/trainers", everyone...),
		Permit(http.MethodGet, "/members/me", memberOrAdmin...),
		Permit(http.MethodPut, "/members/me", everyone...),
		Permit(http.MethodPost, "/members/complete-profile", memberOrAdmin...),
		Permit(http.MethodGet, "/trainers/{id}", trainerOrAdmin...),

		Permit(http.MethodGet, "/members", trainerOrAdmin...),
		Permit(http.MethodGet, "/members/by-trainer/**", trainerOrAdmin...),
		Permit(http.MethodPost, "/members", trainerOrAdmin...),
		Permit(http.MethodPut, "/members/{id}", trainerOrAdmin...),
		Permit(http.MethodDelete, "/members/{id}", trainerOrAdmin...),

		Permit(MethodAny, CatchAllPattern, domain.RoleAdmin),
	}
}

// NewDefaultMatrix compiles DefaultRules.
func NewDefaultMatrix() (*Matrix, error) {
	return NewMatrix(DefaultRules())
}
