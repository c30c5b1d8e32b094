package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/kursadbilgin/auth-gate/internal/repository"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_accounts",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.AccountModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.AccountModel{})
			},
		},
		{
			ID: "000002_create_login_attempts",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.LoginAttemptModel{}); err != nil {
					return err
				}
				indexes := []string{
					// Serves the lockout scan and the failure count, both of
					// which filter on account_id and a time cutoff.
					`CREATE INDEX IF NOT EXISTS idx_login_attempts_account_occurred ON login_attempts (account_id, occurred_at)`,
					`CREATE INDEX IF NOT EXISTS idx_login_attempts_active_locks ON login_attempts (account_id, occurred_at) WHERE locked`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.LoginAttemptModel{})
			},
		},
	})

	return m.Migrate()
}
