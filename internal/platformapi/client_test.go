// Package platformapi is the HTTP client for the kehilahub platform API.
package platformapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kehilahub/authgate/internal/core/domain"
)

func TestClient_LoginTenantScoped(t *testing.T) {
	var gotTenant, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotTenant = r.Header.Get("X-Tenant-ID")
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotBody = req.Email

		_ = json.NewEncoder(w).Encode(authResponse{
			AccessToken:  "acc-1",
			RefreshToken: "ref-1",
			User:         &domain.Identity{ID: "u1", Email: req.Email, Role: domain.RoleMember},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sess, identity, err := c.Login(context.Background(), "dana@example.org", "pw", "tnt-paris")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if gotTenant != "tnt-paris" {
		t.Errorf("X-Tenant-ID = %q, want %q", gotTenant, "tnt-paris")
	}
	if gotBody != "dana@example.org" {
		t.Errorf("request email = %q", gotBody)
	}
	if !sess.Valid() || sess.AccessToken != "acc-1" || sess.RefreshToken != "ref-1" {
		t.Errorf("session = %+v", sess)
	}
	if identity == nil || identity.ID != "u1" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestClient_LoginHubOmitsTenantHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["X-Tenant-Id"]; ok {
			t.Error("hub login must not send X-Tenant-ID")
		}
		_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "a", RefreshToken: "r"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, _, err := c.Login(context.Background(), "x@y.z", "pw", ""); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}

func TestClient_LoginStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rejected credentials", http.StatusUnauthorized, domain.ErrCredentialsInvalid},
		{"unknown tenant", http.StatusNotFound, domain.ErrTenantUnknown},
		{"rate limited", http.StatusTooManyRequests, domain.ErrLoginRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(errorResponse{Code: "X", Message: "nope"})
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, _, err := c.Login(context.Background(), "x@y.z", "pw", "")
			if !errors.Is(err, tt.want) {
				t.Errorf("Login() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_RefreshRotatesPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "ref-old" {
			t.Errorf("refresh_token = %q", req.RefreshToken)
		}
		_ = json.NewEncoder(w).Encode(authResponse{AccessToken: "acc-new", RefreshToken: "ref-new"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sess, err := c.Refresh(context.Background(), "ref-old")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if sess.AccessToken != "acc-new" || sess.RefreshToken != "ref-new" {
		t.Errorf("session = %+v", sess)
	}
}

func TestClient_RefreshRejectedIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Refresh(context.Background(), "ref-dead"); !errors.Is(err, domain.ErrRefreshFailed) {
		t.Errorf("Refresh() error = %v, want ErrRefreshFailed", err)
	}
}

func TestClient_MeSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer acc-1" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(domain.Identity{ID: "u1", Name: "Dana", Role: domain.RoleTenantAdmin})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	identity, err := c.Me(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if identity.Name != "Dana" || identity.Role != domain.RoleTenantAdmin {
		t.Errorf("identity = %+v", identity)
	}
}

func TestClient_MeExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Me(context.Background(), "stale"); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("Me() error = %v, want ErrTokenExpired", err)
	}
}

func TestClient_UpdateMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		var upd domain.ProfileUpdate
		_ = json.NewDecoder(r.Body).Decode(&upd)
		_ = json.NewEncoder(w).Encode(domain.Identity{ID: "u1", Name: upd.Name})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	identity, err := c.UpdateMe(context.Background(), "acc-1", domain.ProfileUpdate{Name: "New Name"})
	if err != nil {
		t.Fatalf("UpdateMe() error = %v", err)
	}
	if identity.Name != "New Name" {
		t.Errorf("identity.Name = %q", identity.Name)
	}
}

func TestClient_LookupTenants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("email"); got != "dana@example.org" {
			t.Errorf("email query = %q", got)
		}
		_ = json.NewEncoder(w).Encode(lookupResponse{Tenants: []domain.Tenant{
			{ID: "tnt-1", Slug: "kehilat-paris"},
			{ID: "tnt-2", Slug: "shalom-marseille"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	tenants, err := c.LookupTenants(context.Background(), "dana@example.org")
	if err != nil {
		t.Fatalf("LookupTenants() error = %v", err)
	}
	if len(tenants) != 2 || tenants[1].Slug != "shalom-marseille" {
		t.Errorf("tenants = %+v", tenants)
	}
}

func TestClient_LookupFailureIsDiscoveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.LookupTenants(context.Background(), "x@y.z"); !errors.Is(err, domain.ErrTenantDiscoveryFailed) {
		t.Errorf("LookupTenants() error = %v, want ErrTenantDiscoveryFailed", err)
	}
}

func TestClient_NetworkErrorWrapped(t *testing.T) {
	// Point at a closed server.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, _, err := c.Login(context.Background(), "x@y.z", "pw", "")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("Login() error = %v, want ErrNetwork", err)
	}
}
