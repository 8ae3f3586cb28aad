package cli

import (
	"errors"
	"fmt"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
)

const defaultMainTitle = `"Welcome"`

func newMigrateCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the users, profiles, settings and events tables and
seed the main_title setting when it does not exist yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := connect(open)
			if err != nil {
				return err
			}
			defer release()

			if err := db.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}

			settings := repository.NewSettingRepository(db)
			_, err = settings.Get(cmd.Context(), models.SettingMainTitle)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				if _, err := settings.Put(cmd.Context(), models.SettingMainTitle, datatypes.JSON(defaultMainTitle)); err != nil {
					return fmt.Errorf("failed to seed %s: %w", models.SettingMainTitle, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", models.SettingMainTitle)
			case err != nil:
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
