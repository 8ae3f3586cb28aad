package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newAdminCommand(open Opener) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin role",
	}

	adminCmd.AddCommand(
		&cobra.Command{
			Use:   "grant <email|id>",
			Short: "Grant the admin role to an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, release, err := connect(open)
				if err != nil {
					return err
				}
				defer release()
				user, err := resolveUser(cmd.Context(), db, args[0])
				if err != nil {
					return err
				}
				if err := repository.NewProfileRepository(db).SetRole(cmd.Context(), user.ID, models.RoleAdmin); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted admin to %s\n", user.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "revoke <email|id>",
			Short: "Remove the role record of an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, release, err := connect(open)
				if err != nil {
					return err
				}
				defer release()
				user, err := resolveUser(cmd.Context(), db, args[0])
				if err != nil {
					return err
				}
				affected, err := repository.NewProfileRepository(db).Delete(cmd.Context(), user.ID)
				if err != nil {
					return err
				}
				if affected == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s had no role record\n", user.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked admin from %s\n", user.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List accounts holding the admin role",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, release, err := connect(open)
				if err != nil {
					return err
				}
				defer release()
				admins, err := repository.NewProfileRepository(db).ListByRole(cmd.Context(), models.RoleAdmin)
				if err != nil {
					return err
				}

				users := repository.NewUserRepository(db)
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tROLE")
				for _, admin := range admins {
					email := "-"
					if user, err := users.FindByID(cmd.Context(), admin.ID); err == nil {
						email = user.Email
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", admin.ID, email, admin.Role)
				}
				return w.Flush()
			},
		},
	)
	return adminCmd
}

// resolveUser accepts either an account id or an email address.
func resolveUser(ctx context.Context, db *gorm.DB, ref string) (*models.User, error) {
	users := repository.NewUserRepository(db)
	ref = strings.TrimSpace(ref)

	var (
		user *models.User
		err  error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		user, err = users.FindByID(ctx, ref)
	} else {
		user, err = users.FindByEmail(ctx, strings.ToLower(ref))
	}
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", ref, err)
	}
	return user, nil
}
