package domain

import "strings"

// ExternalIdentity is what a federated identity provider reports after a
// successful login.
type ExternalIdentity struct {
	Provider string
	Email    string
	Name     string
	Gender   string
}

// DisplayName falls back to the local part of the email when the provider
// did not share a name.
func (i ExternalIdentity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
