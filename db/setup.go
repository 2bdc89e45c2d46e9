package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/models"
)

// Connect opens the database and returns the handle for injection; there is no
// package-level connection. TranslateError turns driver duplicate-key failures
// into gorm.ErrDuplicatedKey so races on unique indexes surface as conflicts.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

func Migrate(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.Task{},
		&models.Notification{},
	}

	migrator := conn.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := conn.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
