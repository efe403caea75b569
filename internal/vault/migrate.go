// Package vault provides tamper-checked token storage.
package vault

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kehilahub/authgate/internal/core/domain"
)

// legacyBlob is the pre-split single-record session format. Earlier
// releases stored the whole pair as one JSON value under auth_session.
type legacyBlob struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IssuedAt     int64  `json:"issued_at"`
}

// MigrateLegacy performs the one-time migration from the pre-split
// storage format into the paired records.
//
// It is an explicit, idempotent startup step: callers invoke it once
// from application bootstrap before the first Load. If the paired
// records already exist the legacy blob is simply discarded; a legacy
// blob that fails to parse is discarded too, since it cannot be
// trusted. Returns true when a session was migrated.
func (v *Vault) MigrateLegacy(ctx context.Context) (bool, error) {
	legacy, ok, err := v.durable.Get(ctx, domain.RecordLegacySession)
	if err != nil {
		return false, domain.ErrStorage.WithCause(err)
	}
	if !ok {
		return false, nil
	}

	// Whatever happens next, the legacy locations go away.
	defer func() {
		for _, name := range domain.LegacyRecords {
			if derr := v.durable.Delete(ctx, name); derr != nil {
				v.logger.Warn("failed to remove legacy record", "record", name, "error", derr)
			}
		}
	}()

	if _, ok, err := v.durable.Get(ctx, domain.RecordAccessToken); err == nil && ok {
		v.logger.Info("paired records already present, discarding legacy session")
		return false, nil
	}

	var blob legacyBlob
	if err := json.Unmarshal([]byte(legacy.Value), &blob); err != nil {
		v.logger.Warn("legacy session blob unreadable, discarding", "error", err)
		return false, nil
	}

	sess := &domain.Session{
		AccessToken:  blob.AccessToken,
		RefreshToken: blob.RefreshToken,
		IssuedAt:     blob.IssuedAt,
	}
	if !sess.Valid() {
		v.logger.Info("legacy session incomplete, discarding")
		return false, nil
	}

	if err := v.Store(ctx, sess); err != nil {
		return false, err
	}

	v.logger.Info("migrated legacy session into paired records",
		slog.Int64("issued_at", blob.IssuedAt))
	return true, nil
}
