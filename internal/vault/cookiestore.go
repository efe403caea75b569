// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"net/http"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// CookieStore is a RecordStore bound to one HTTP exchange. Reads come
// from the request's cookies; writes become Set-Cookie headers on the
// response. The gateway constructs one per request, so the browser's
// cookie jar is the actual durable store.
type CookieStore struct {
	r *http.Request
	w http.ResponseWriter

	// written and deleted shadow cookie mutations made during this
	// exchange so a Load after a Store or Clear inside one request
	// observes them, even though the browser has not round-tripped.
	written map[string]domain.StoredRecord
	deleted map[string]bool
}

// NewCookieStore binds a store to a request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{
		r:       r,
		w:       w,
		written: make(map[string]domain.StoredRecord),
		deleted: make(map[string]bool),
	}
}

func sameSite(s domain.SameSite) http.SameSite {
	switch s {
	case domain.SameSiteStrict:
		return http.SameSiteStrictMode
	case domain.SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Set writes the record as a Set-Cookie header. Cookies are always
// HttpOnly: tokens must never be script-readable.
func (s *CookieStore) Set(_ context.Context, rec domain.StoredRecord) error {
	path := rec.Path
	if path == "" {
		path = "/"
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     rec.Name,
		Value:    rec.Value,
		Expires:  rec.Expires,
		Path:     path,
		Secure:   rec.Secure,
		HttpOnly: true,
		SameSite: sameSite(rec.SameSite),
	})
	s.written[rec.Name] = rec
	delete(s.deleted, rec.Name)
	return nil
}

// Get reads a record from this exchange's writes first, then from the
// request's cookies.
func (s *CookieStore) Get(_ context.Context, name string) (domain.StoredRecord, bool, error) {
	if rec, ok := s.written[name]; ok {
		return rec, true, nil
	}
	if s.deleted[name] {
		return domain.StoredRecord{}, false, nil
	}

	c, err := s.r.Cookie(name)
	if err != nil {
		// http.ErrNoCookie is the only error Cookie returns.
		return domain.StoredRecord{}, false, nil
	}
	return domain.StoredRecord{
		Name:  name,
		Value: c.Value,
	}, true, nil
}

// Delete expires the cookie on the client.
func (s *CookieStore) Delete(_ context.Context, name string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	delete(s.written, name)
	s.deleted[name] = true
	return nil
}
