// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"testing"

	"github.com/kehilahub/authgate/internal/core/domain"
)

func TestMigrateLegacy(t *testing.T) {
	ctx := context.Background()
	v, durable, _ := newTestVault(t)

	legacy := domain.StoredRecord{
		Name:  domain.RecordLegacySession,
		Value: `{"access_token":"legacy-access","refresh_token":"legacy-refresh","issued_at":1700000000000}`,
	}
	if err := durable.Set(ctx, legacy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	migrated, err := v.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacy() error = %v", err)
	}
	if !migrated {
		t.Fatal("MigrateLegacy() = false, want true")
	}

	sess, err := v.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after migration error = %v", err)
	}
	if sess == nil || sess.AccessToken != "legacy-access" || sess.RefreshToken != "legacy-refresh" {
		t.Errorf("Load() after migration = %+v", sess)
	}

	if _, ok, _ := durable.Get(ctx, domain.RecordLegacySession); ok {
		t.Error("legacy record should be removed after migration")
	}
}

func TestMigrateLegacy_Idempotent(t *testing.T) {
	ctx := context.Background()
	v, durable, _ := newTestVault(t)

	legacy := domain.StoredRecord{
		Name:  domain.RecordLegacySession,
		Value: `{"access_token":"a","refresh_token":"r","issued_at":1}`,
	}
	if err := durable.Set(ctx, legacy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := v.MigrateLegacy(ctx); err != nil {
		t.Fatalf("first MigrateLegacy() error = %v", err)
	}

	migrated, err := v.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("second MigrateLegacy() error = %v", err)
	}
	if migrated {
		t.Error("second MigrateLegacy() = true, want false")
	}
}

func TestMigrateLegacy_NoLegacyRecord(t *testing.T) {
	ctx := context.Background()
	v, _, _ := newTestVault(t)

	migrated, err := v.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacy() error = %v", err)
	}
	if migrated {
		t.Error("MigrateLegacy() on empty store = true, want false")
	}
}

func TestMigrateLegacy_PairedRecordsWin(t *testing.T) {
	ctx := context.Background()
	v, durable, _ := newTestVault(t)

	if err := v.Store(ctx, domain.NewSession("current-access", "current-refresh")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	legacy := domain.StoredRecord{
		Name:  domain.RecordLegacySession,
		Value: `{"access_token":"old-access","refresh_token":"old-refresh","issued_at":1}`,
	}
	if err := durable.Set(ctx, legacy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	migrated, err := v.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacy() error = %v", err)
	}
	if migrated {
		t.Error("MigrateLegacy() must not overwrite current paired records")
	}

	sess, _ := v.Load(ctx)
	if sess == nil || sess.AccessToken != "current-access" {
		t.Errorf("Load() = %+v, want the current session preserved", sess)
	}
	if _, ok, _ := durable.Get(ctx, domain.RecordLegacySession); ok {
		t.Error("legacy record should still be discarded")
	}
}

func TestMigrateLegacy_CorruptBlobDiscarded(t *testing.T) {
	ctx := context.Background()
	v, durable, _ := newTestVault(t)

	legacy := domain.StoredRecord{Name: domain.RecordLegacySession, Value: "not-json"}
	if err := durable.Set(ctx, legacy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	migrated, err := v.MigrateLegacy(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacy() error = %v", err)
	}
	if migrated {
		t.Error("corrupt legacy blob must not migrate")
	}
	if _, ok, _ := durable.Get(ctx, domain.RecordLegacySession); ok {
		t.Error("corrupt legacy record should be discarded")
	}
}
