package database

import (
	"context"
	"database/sql"

	"github.com/jask/a11ycoord/internal/database/repository"
	"github.com/jask/a11ycoord/internal/prefs"
)

// SeedDefaults ensures a preferences record holding defaults exists for new
// databases.
// It is idempotent and safe to run on every startup; an existing record is
// never overwritten.
func SeedDefaults(ctx context.Context, db *sql.DB, defaults prefs.Preferences) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		repo := repository.NewSettingsRepo(tx)
		_, ok, err := repo.Get(ctx, prefs.StorageKey)
		if err != nil || ok {
			return err
		}
		return prefs.NewStore(repo).Save(ctx, defaults)
	})
}
