package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordEnv       = "SITECTL_PASSWORD"
	minPasswordLength = 8
)

func newUserCommand(open Opener) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var (
		email    string
		password string
		admin    bool
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Long: `Create an account with a bcrypt-hashed password. The password is read
from --password or, when omitted, from the ` + passwordEnv + ` environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(strings.ToLower(email))
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if len(password) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters", minPasswordLength)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			db, release, err := connect(open)
			if err != nil {
				return err
			}
			defer release()

			user := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
			if err := repository.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
				return err
			}
			if admin {
				if err := repository.NewProfileRepository(db).SetRole(cmd.Context(), user.ID, models.RoleAdmin); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "account email")
	createCmd.Flags().StringVar(&password, "password", "", "account password (defaults to $"+passwordEnv+")")
	createCmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role to the new account")

	userCmd.AddCommand(createCmd)
	return userCmd
}
