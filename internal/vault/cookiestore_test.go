// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kehilahub/authgate/internal/core/domain"
)

func TestCookieStore_SetWritesCookie(t *testing.T) {
	ctx := context.Background()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s := NewCookieStore(w, r)

	rec := domain.StoredRecord{
		Name:     domain.RecordAccessToken,
		Value:    "tok-123",
		Expires:  time.Now().Add(time.Hour),
		Secure:   true,
		SameSite: domain.SameSiteLax,
		Path:     "/",
	}
	if err := s.Set(ctx, rec); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != domain.RecordAccessToken || c.Value != "tok-123" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("token cookies must be HttpOnly")
	}
	if !c.Secure {
		t.Error("Secure flag lost")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", c.SameSite)
	}
}

func TestCookieStore_GetReadsRequestCookies(t *testing.T) {
	ctx := context.Background()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: domain.RecordRefreshToken, Value: "refresh-1"})
	s := NewCookieStore(w, r)

	rec, ok, err := s.Get(ctx, domain.RecordRefreshToken)
	if err != nil || !ok {
		t.Fatalf("Get() = (_, %v, %v), want present", ok, err)
	}
	if rec.Value != "refresh-1" {
		t.Errorf("Get().Value = %q, want %q", rec.Value, "refresh-1")
	}

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("Get(missing) should report absent")
	}
}

func TestCookieStore_WriteThenReadSameExchange(t *testing.T) {
	ctx := context.Background()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s := NewCookieStore(w, r)

	rec := domain.StoredRecord{Name: domain.RecordAccessToken, Value: "fresh"}
	if err := s.Set(ctx, rec); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := s.Get(ctx, domain.RecordAccessToken)
	if err != nil || !ok {
		t.Fatalf("Get() after Set in same exchange = (_, %v, %v)", ok, err)
	}
	if got.Value != "fresh" {
		t.Errorf("Get().Value = %q, want the value written this exchange", got.Value)
	}
}

func TestCookieStore_DeleteExpiresCookie(t *testing.T) {
	ctx := context.Background()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: domain.RecordAccessToken, Value: "old"})
	s := NewCookieStore(w, r)

	if err := s.Delete(ctx, domain.RecordAccessToken); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookies[0].MaxAge)
	}

	// The request still carries the cookie, but a read after Delete in the
	// same exchange must not resurrect it.
	if _, ok, _ := s.Get(ctx, domain.RecordAccessToken); ok {
		t.Error("Get() after Delete should report absent")
	}
}
