// Package platformapi is the HTTP client for the kehilahub platform API.
package platformapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// userAgent identifies this client to the platform API.
const userAgent = "authgate/1.0"

// defaultTimeout bounds a single API call end to end.
const defaultTimeout = 30 * time.Second

// Client talks to the platform API's authentication endpoints.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Useful for tests
// and for callers that need custom transport settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a client for the platform API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	// Ensure baseURL has http:// prefix
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates email/password against one tenant, or against
// the hub when tenantID is empty. A 401 from the API surfaces as
// ErrCredentialsInvalid; the resolver decides whether that ends the
// cascade.
func (c *Client) Login(ctx context.Context, email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
	headers := map[string]string{}
	if tenantID != "" {
		headers["X-Tenant-ID"] = tenantID
	}

	resp, err := c.post(ctx, "/api/v1/auth/login", loginRequest{Email: email, Password: password}, headers)
	if err != nil {
		return nil, nil, err
	}

	var body authResponse
	if err := c.decode(resp, &body, loginErrorMap); err != nil {
		return nil, nil, err
	}
	return domain.NewSession(body.AccessToken, body.RefreshToken), body.User, nil
}

// Register creates a hub account and returns the freshly issued
// session. Site-mode sign-up attaches the tenant via X-Tenant-ID the
// same way login does.
func (c *Client) Register(ctx context.Context, reg domain.Registration, tenantID string) (*domain.Session, *domain.Identity, error) {
	headers := map[string]string{}
	if tenantID != "" {
		headers["X-Tenant-ID"] = tenantID
	}

	resp, err := c.post(ctx, "/api/v1/auth/register", registerRequest{
		Email:    reg.Email,
		Password: reg.Password,
		Name:     reg.Name,
	}, headers)
	if err != nil {
		return nil, nil, err
	}

	var body authResponse
	if err := c.decode(resp, &body, loginErrorMap); err != nil {
		return nil, nil, err
	}
	return domain.NewSession(body.AccessToken, body.RefreshToken), body.User, nil
}

// Refresh rotates a session pair. A 401 means the refresh token itself
// was rejected and maps to ErrRefreshFailed, which is terminal for the
// stored session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	resp, err := c.post(ctx, "/api/v1/auth/refresh", refreshRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return nil, err
	}

	var body authResponse
	if err := c.decode(resp, &body, refreshErrorMap); err != nil {
		return nil, err
	}
	return domain.NewSession(body.AccessToken, body.RefreshToken), nil
}

// Me fetches the profile behind an access token.
func (c *Client) Me(ctx context.Context, accessToken string) (*domain.Identity, error) {
	resp, err := c.get(ctx, "/api/v1/auth/me", bearer(accessToken))
	if err != nil {
		return nil, err
	}

	var identity domain.Identity
	if err := c.decode(resp, &identity, tokenErrorMap); err != nil {
		return nil, err
	}
	return &identity, nil
}

// UpdateMe patches the mutable profile fields and returns the updated
// identity.
func (c *Client) UpdateMe(ctx context.Context, accessToken string, upd domain.ProfileUpdate) (*domain.Identity, error) {
	resp, err := c.do(ctx, http.MethodPatch, "/api/v1/auth/me", upd, bearer(accessToken))
	if err != nil {
		return nil, err
	}

	var identity domain.Identity
	if err := c.decode(resp, &identity, tokenErrorMap); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout revokes the session server-side. Callers clear local storage
// regardless of the outcome, so an API rejection here is advisory.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.post(ctx, "/api/v1/auth/logout", nil, bearer(accessToken))
	if err != nil {
		return err
	}
	return c.decode(resp, nil, tokenErrorMap)
}

// LookupTenants asks the directory which tenants know an email. An
// empty list is a valid answer; only transport or server failures
// error, mapped to ErrTenantDiscoveryFailed so the resolver can
// degrade to its fallback list.
func (c *Client) LookupTenants(ctx context.Context, email string) ([]domain.Tenant, error) {
	path := "/api/v1/tenants/lookup?email=" + url.QueryEscape(email)
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, domain.ErrTenantDiscoveryFailed.WithCause(err)
	}

	var body lookupResponse
	if err := c.decode(resp, &body, nil); err != nil {
		return nil, domain.ErrTenantDiscoveryFailed.WithCause(err)
	}
	return body.Tenants, nil
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, headers)
}

// post performs a POST request with an optional JSON body.
func (c *Client) post(ctx context.Context, path string, body any, headers map[string]string) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, headers)
}

// do builds, sends and transport-checks a single request.
func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.ErrNetwork.WithCause(err)
	}
	return resp, nil
}

// bearer builds an Authorization header for one call.
func bearer(accessToken string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + accessToken}
}

// Per-endpoint mapping of HTTP status to domain sentinel. The same 401
// means different things depending on what was presented.
var (
	loginErrorMap = map[int]*domain.DomainError{
		http.StatusUnauthorized:    domain.ErrCredentialsInvalid,
		http.StatusNotFound:        domain.ErrTenantUnknown,
		http.StatusTooManyRequests: domain.ErrLoginRateLimited,
	}
	refreshErrorMap = map[int]*domain.DomainError{
		http.StatusUnauthorized: domain.ErrRefreshFailed,
	}
	tokenErrorMap = map[int]*domain.DomainError{
		http.StatusUnauthorized: domain.ErrTokenExpired,
	}
)

// decode parses a JSON response body into target and maps error
// statuses onto domain sentinels, carrying the API's own code and
// message as details.
func (c *Client) decode(resp *http.Response, target any, errorMap map[int]*domain.DomainError) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		if sentinel, ok := errorMap[resp.StatusCode]; ok {
			if apiErr.Message != "" {
				return sentinel.WithDetails(apiErr.Message)
			}
			return sentinel
		}
		if apiErr.Message != "" {
			return domain.ErrNetwork.WithDetails(fmt.Sprintf("[%s] %s", apiErr.Code, apiErr.Message))
		}
		return domain.ErrNetwork.WithDetails(fmt.Sprintf("request failed with status %d", resp.StatusCode))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
