// Package auth exposes the authentication endpoints: login, registration,
// token refresh, logout and the current-principal profile.
package auth

import "github.com/praxis-crm/praxis/internal/shared"

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RefreshRequest carries the refresh token being exchanged.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest optionally carries the refresh token so both halves of the
// pair die together.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Profile is the current-principal view returned by the me endpoint.
type Profile struct {
	ID          int64               `json:"id"`
	Username    string              `json:"username"`
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	Roles       []string            `json:"roles"`
	Permissions map[string][]string `json:"permissions"`
	DataScope   string              `json:"dataScope"`
}

func profileOf(p *shared.Principal) *Profile {
	return &Profile{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		Name:        p.Name,
		Roles:       p.RoleCodes,
		Permissions: p.Permissions,
		DataScope:   p.DataScope.String(),
	}
}
