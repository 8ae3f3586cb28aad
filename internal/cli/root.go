// Package cli implements sitectl, the operator command line for the site.
package cli

import (
	"github.com/GunarsK-portfolio/artist-site/internal/config"
	"github.com/GunarsK-portfolio/artist-site/pkg/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Opener returns the database the commands operate on.
type Opener func() (*gorm.DB, error)

// OpenFromEnv connects using the DB_* environment variables.
func OpenFromEnv() (*gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	return database.Connect(cfg)
}

// connect opens the database and returns a func that releases its pool.
func connect(open Opener) (*gorm.DB, func(), error) {
	db, err := open()
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

// NewRootCommand builds the sitectl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "sitectl",
		Short: "Operator tooling for the artist site",
		Long: `sitectl performs privileged operations the web server does not expose:
schema migrations, account creation and admin role management.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCommand(open),
		newUserCommand(open),
		newAdminCommand(open),
	)
	return root
}

// Execute runs sitectl against the environment-configured database.
func Execute() error {
	return NewRootCommand(OpenFromEnv).Execute()
}
