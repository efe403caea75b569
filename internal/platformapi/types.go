// Package platformapi is the HTTP client for the kehilahub platform API.
package platformapi

import "github.com/kehilahub/authgate/internal/core/domain"

// loginRequest is the body of POST /api/v1/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerRequest is the body of POST /api/v1/auth/register.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// refreshRequest is the body of POST /api/v1/auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// authResponse is returned by login, register and refresh.
type authResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *domain.Identity `json:"user,omitempty"`
	Tenant       *domain.Tenant   `json:"tenant,omitempty"`
}

// lookupResponse is returned by the tenant directory.
type lookupResponse struct {
	Tenants []domain.Tenant `json:"tenants"`
}

// errorResponse is the platform API's error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
