package command

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// mockPlatform is a stand-in platform API tracking issued tokens.
type mockPlatform struct {
	*httptest.Server

	mu        sync.Mutex
	access    string
	refresh   string
	issued    int
	refreshes int
	logouts   int

	// lastTenantID records the X-Tenant-ID header of the last login.
	lastTenantID string
}

func newMockPlatform(t *testing.T) *mockPlatform {
	t.Helper()

	m := &mockPlatform{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", m.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/refresh", m.handleRefresh)
	mux.HandleFunc("POST /api/v1/auth/logout", m.handleLogout)
	mux.HandleFunc("GET /api/v1/auth/me", m.handleMe)
	mux.HandleFunc("GET /api/v1/tenants/lookup", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"tenants": []any{}})
	})

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

func (m *mockPlatform) issue() (string, string) {
	m.issued++
	m.access = fmt.Sprintf("agat_%d", m.issued)
	m.refresh = fmt.Sprintf("agrt_%d", m.issued)
	return m.access, m.refresh
}

func (m *mockPlatform) identity() map[string]any {
	return map[string]any{
		"id":    "usr-1",
		"email": "dana@example.org",
		"name":  "Dana",
		"role":  "member",
	}
}

func (m *mockPlatform) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastTenantID = r.Header.Get("X-Tenant-ID")

	if req.Email != "dana@example.org" || req.Password != "pw" {
		errorResponse(w, http.StatusUnauthorized, "AG-CRED-4010", "invalid credentials")
		return
	}

	access, refresh := m.issue()
	jsonResponse(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          m.identity(),
	})
}

func (m *mockPlatform) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	m.mu.Lock()
	defer m.mu.Unlock()

	if req.RefreshToken != m.refresh {
		errorResponse(w, http.StatusUnauthorized, "AG-TOKN-4030", "refresh token rejected")
		return
	}

	m.refreshes++
	access, refresh := m.issue()
	jsonResponse(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (m *mockPlatform) handleLogout(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logouts++
	m.access = ""
	m.refresh = ""
	w.WriteHeader(http.StatusNoContent)
}

func (m *mockPlatform) handleMe(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.access == "" || r.Header.Get("Authorization") != "Bearer "+m.access {
		errorResponse(w, http.StatusUnauthorized, "AG-TOKN-4011", "token expired")
		return
	}
	jsonResponse(w, http.StatusOK, m.identity())
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// writeTestConfig writes a CLI config pointing every path at dir and
// the platform at the mock server. Returns the config file path.
func writeTestConfig(t *testing.T, dir string, platform *mockPlatform) string {
	t.Helper()

	path := filepath.Join(dir, "cli.yaml")
	content := fmt.Sprintf(
		"platform_url: %s\nvault_dir: %s\nkey_file: %s\ndefault_output: json\n",
		platform.URL,
		filepath.Join(dir, "vault"),
		filepath.Join(dir, "vault.key"),
	)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// run executes the CLI app with global flags pointing at the test
// config, followed by the given command args.
func run(t *testing.T, cfgPath string, args ...string) error {
	t.Helper()

	full := []string{"authgate-cli", "--config", cfgPath}
	full = append(full, args...)
	return App().Run(full)
}
