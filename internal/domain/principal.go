package domain

import (
	"fmt"
	"strings"
)

// Role enumerates the three principal kinds.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTrainer Role = "TRAINER"
	RoleMember  Role = "MEMBER"
)

// rolePrefix is the framework-style authority prefix some tokens carry.
const rolePrefix = "ROLE_"

// Roles lists every role in partition lookup order.
var Roles = []Role{RoleAdmin, RoleTrainer, RoleMember}

// ParseRole normalizes a role claim to its bare canonical form.
// "ROLE_ADMIN", "admin" and "ADMIN" all yield RoleAdmin.
func ParseRole(raw string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, rolePrefix)
	switch Role(name) {
	case RoleAdmin, RoleTrainer, RoleMember:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleMember:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Principal is the identity shared by admins, trainers and members.
type Principal struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
}

// NormalizeUsername is the canonical form of a login name. Usernames are
// unique across all partitions ignoring case, and federated logins use the
// provider email as the username.
func NormalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
