// Package service implements the authentication lifecycle for authgate.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"golang.org/x/time/rate"

	"github.com/kehilahub/authgate/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_HintShortCircuitsDiscovery(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
			if tenantID != "kehilat-paris" {
				t.Errorf("tenantID = %q, want the hint", tenantID)
			}
			return domain.NewSession("a", "r"), &domain.Identity{ID: "u1"}, nil
		},
		lookupFn: func(email string) ([]domain.Tenant, error) {
			t.Error("directory must not be consulted when a hint is present")
			return nil, nil
		},
	}
	r := NewTenantResolver(api, WithResolverLogger(testLogger()))

	res, err := r.Login(context.Background(), domain.Credentials{
		Email: "dana@example.org", Password: "pw", TenantHint: "kehilat-paris",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Tenant == nil || res.Tenant.Slug != "kehilat-paris" {
		t.Errorf("Tenant = %+v", res.Tenant)
	}
	if res.Source != SourceHint {
		t.Errorf("Source = %q, want %q", res.Source, SourceHint)
	}
}

func TestResolver_FirstSuccessWins(t *testing.T) {
	// kehilat-paris rejects, shalom-marseille accepts, hub untouched.
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) {
			return []domain.Tenant{
				{ID: "tnt-1", Slug: "kehilat-paris"},
				{ID: "tnt-2", Slug: "shalom-marseille"},
			}, nil
		},
		loginFn: func(email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
			if tenantID == "tnt-2" {
				return domain.NewSession("a", "r"), &domain.Identity{ID: "u1"}, nil
			}
			return nil, nil, domain.ErrCredentialsInvalid
		},
	}
	r := NewTenantResolver(api, WithResolverLogger(testLogger()))

	res, err := r.Login(context.Background(), domain.Credentials{Email: "dana@example.org", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Tenant == nil || res.Tenant.Slug != "shalom-marseille" {
		t.Errorf("Tenant = %+v", res.Tenant)
	}
	if res.Source != SourceDirectory {
		t.Errorf("Source = %q, want %q", res.Source, SourceDirectory)
	}

	want := []string{"tnt-1", "tnt-2"}
	if got := api.attemptedTenants(); !reflect.DeepEqual(got, want) {
		t.Errorf("attempted tenants = %v, want %v (no hub attempt)", got, want)
	}
}

func TestResolver_ExhaustionFallsThroughToHub(t *testing.T) {
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) {
			return []domain.Tenant{{ID: "tnt-1", Slug: "kehilat-paris"}}, nil
		},
		loginFn: func(email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
			if tenantID == "" {
				return domain.NewSession("a", "r"), &domain.Identity{ID: "hub-user"}, nil
			}
			return nil, nil, domain.ErrCredentialsInvalid
		},
	}
	r := NewTenantResolver(api, WithResolverLogger(testLogger()))

	res, err := r.Login(context.Background(), domain.Credentials{Email: "x@y.z", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Tenant != nil {
		t.Errorf("hub login must yield a nil tenant, got %+v", res.Tenant)
	}
	if res.Source != SourceHub {
		t.Errorf("Source = %q, want %q", res.Source, SourceHub)
	}
}

func TestResolver_FullExhaustionIsCredentialsInvalid(t *testing.T) {
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) {
			return []domain.Tenant{{ID: "tnt-1", Slug: "kehilat-paris"}}, nil
		},
	}
	r := NewTenantResolver(api, WithResolverLogger(testLogger()))

	_, err := r.Login(context.Background(), domain.Credentials{Email: "x@y.z", Password: "bad"})
	if !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Errorf("Login() error = %v, want ErrCredentialsInvalid", err)
	}

	// Every candidate and the hub were tried.
	want := []string{"tnt-1", ""}
	if got := api.attemptedTenants(); !reflect.DeepEqual(got, want) {
		t.Errorf("attempted tenants = %v, want %v", got, want)
	}
}

func TestResolver_DirectoryFailureDegradesToFallback(t *testing.T) {
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) {
			return nil, domain.ErrTenantDiscoveryFailed
		},
		loginFn: func(email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
			if tenantID == "shalom-marseille" {
				return domain.NewSession("a", "r"), &domain.Identity{}, nil
			}
			return nil, nil, domain.ErrCredentialsInvalid
		},
	}
	r := NewTenantResolver(api,
		WithResolverLogger(testLogger()),
		WithFallbackTenants([]string{"kehilat-paris", "shalom-marseille"}),
	)

	res, err := r.Login(context.Background(), domain.Credentials{Email: "x@y.z", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Tenant == nil || res.Tenant.Slug != "shalom-marseille" {
		t.Errorf("Tenant = %+v", res.Tenant)
	}
}

func TestResolver_SetFallbackHotSwaps(t *testing.T) {
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) { return nil, nil },
	}
	r := NewTenantResolver(api, WithResolverLogger(testLogger()))

	if got, _ := r.FindCandidates(context.Background(), "x@y.z"); len(got) != 0 {
		t.Errorf("candidates with empty fallback = %v", got)
	}

	r.SetFallback([]string{"kehilat-paris"})
	got, source := r.FindCandidates(context.Background(), "x@y.z")
	if len(got) != 1 || got[0].Slug != "kehilat-paris" {
		t.Errorf("candidates after SetFallback = %v", got)
	}
	if source != SourceFallback {
		t.Errorf("source = %q, want %q", source, SourceFallback)
	}
}

func TestResolver_DirectoryAnswerBeatsFallback(t *testing.T) {
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) {
			return []domain.Tenant{{ID: "tnt-9", Slug: "from-directory"}}, nil
		},
	}
	r := NewTenantResolver(api,
		WithResolverLogger(testLogger()),
		WithFallbackTenants([]string{"never-used"}),
	)

	got, source := r.FindCandidates(context.Background(), "x@y.z")
	if len(got) != 1 || got[0].Slug != "from-directory" {
		t.Errorf("candidates = %v, want the directory answer", got)
	}
	if source != SourceDirectory {
		t.Errorf("source = %q, want %q", source, SourceDirectory)
	}
}

func TestResolver_NetworkErrorStopsCascade(t *testing.T) {
	api := &fakeAPI{
		lookupFn: func(email string) ([]domain.Tenant, error) {
			return []domain.Tenant{{ID: "tnt-1"}, {ID: "tnt-2"}}, nil
		},
		loginFn: func(email, password, tenantID string) (*domain.Session, *domain.Identity, error) {
			return nil, nil, domain.ErrNetwork
		},
	}
	r := NewTenantResolver(api, WithResolverLogger(testLogger()))

	_, err := r.Login(context.Background(), domain.Credentials{Email: "x@y.z", Password: "pw"})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("Login() error = %v, want ErrNetwork", err)
	}
	if got := api.attemptedTenants(); len(got) != 1 {
		t.Errorf("attempted %d tenants after transport failure, want 1", len(got))
	}
}

func TestResolver_RateLimitPerEmail(t *testing.T) {
	api := &fakeAPI{}
	r := NewTenantResolver(api,
		WithResolverLogger(testLogger()),
		WithAttemptRate(rate.Limit(0.001), 2),
	)

	creds := domain.Credentials{Email: "x@y.z", Password: "bad"}
	for i := 0; i < 2; i++ {
		if _, err := r.Login(context.Background(), creds); !errors.Is(err, domain.ErrCredentialsInvalid) {
			t.Fatalf("attempt %d error = %v", i, err)
		}
	}
	if _, err := r.Login(context.Background(), creds); !errors.Is(err, domain.ErrLoginRateLimited) {
		t.Errorf("third attempt error = %v, want ErrLoginRateLimited", err)
	}

	// A different email has its own budget.
	other := domain.Credentials{Email: "other@y.z", Password: "bad"}
	if _, err := r.Login(context.Background(), other); !errors.Is(err, domain.ErrCredentialsInvalid) {
		t.Errorf("other email error = %v, want ErrCredentialsInvalid", err)
	}
}
