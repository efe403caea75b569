// Package service implements the authentication lifecycle for authgate.
package service

import (
	"context"
	"sync"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// fakeAPI is a scripted PlatformAPI. Unset hooks reject the call so a
// test only defines the endpoints it expects to be hit.
type fakeAPI struct {
	mu sync.Mutex

	// loginTenants records the X-Tenant-ID of every login attempt, ""
	// for hub, in order.
	loginTenants []string

	loginFn    func(email, password, tenantID string) (*domain.Session, *domain.Identity, error)
	registerFn func(reg domain.Registration, tenantID string) (*domain.Session, *domain.Identity, error)
	refreshFn  func(refreshToken string) (*domain.Session, error)
	meFn       func(accessToken string) (*domain.Identity, error)
	updateMeFn func(accessToken string, upd domain.ProfileUpdate) (*domain.Identity, error)
	logoutFn   func(accessToken string) error
	lookupFn   func(email string) ([]domain.Tenant, error)
}

func (f *fakeAPI) Login(_ context.Context, email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
	f.mu.Lock()
	f.loginTenants = append(f.loginTenants, tenantID)
	f.mu.Unlock()

	if f.loginFn == nil {
		return nil, nil, domain.ErrCredentialsInvalid
	}
	return f.loginFn(email, password, tenantID)
}

func (f *fakeAPI) Register(_ context.Context, reg domain.Registration, tenantID string) (*domain.Session, *domain.Identity, error) {
	if f.registerFn == nil {
		return nil, nil, domain.ErrCredentialsInvalid
	}
	return f.registerFn(reg, tenantID)
}

func (f *fakeAPI) Refresh(_ context.Context, refreshToken string) (*domain.Session, error) {
	if f.refreshFn == nil {
		return nil, domain.ErrRefreshFailed
	}
	return f.refreshFn(refreshToken)
}

func (f *fakeAPI) Me(_ context.Context, accessToken string) (*domain.Identity, error) {
	if f.meFn == nil {
		return nil, domain.ErrTokenExpired
	}
	return f.meFn(accessToken)
}

func (f *fakeAPI) UpdateMe(_ context.Context, accessToken string, upd domain.ProfileUpdate) (*domain.Identity, error) {
	if f.updateMeFn == nil {
		return nil, domain.ErrTokenExpired
	}
	return f.updateMeFn(accessToken, upd)
}

func (f *fakeAPI) Logout(_ context.Context, accessToken string) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(accessToken)
}

func (f *fakeAPI) LookupTenants(_ context.Context, email string) ([]domain.Tenant, error) {
	if f.lookupFn == nil {
		return nil, nil
	}
	return f.lookupFn(email)
}

// attemptedTenants returns the recorded login order.
func (f *fakeAPI) attemptedTenants() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loginTenants...)
}
