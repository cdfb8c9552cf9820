package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/persistence"
	"github.com/gymcore/gym-gateway/internal/repository"
	"github.com/gymcore/gym-gateway/internal/service"
)

var (
	adminUsername string
	adminPassword string
	adminStdin    bool
)

var adminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage administrator accounts",
}

var adminsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator if the username is free",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminUsername == "" {
			return fmt.Errorf("--username flag is required")
		}
		password := adminPassword
		if adminStdin {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = strings.TrimSpace(scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pg.Close()

		pool := pg.PoolHandle()
		admins := repository.NewAdminRepository(pool)
		members := repository.NewMemberRepository(pool)
		store, err := service.NewCredentialStore(members, admins, repository.NewTrainerRepository(pool), members)
		if err != nil {
			return err
		}
		authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
			Store:  store,
			Admins: admins,
			Hasher: auth.NewBcryptHasher(cfg.Auth.BcryptCost),
			Logger: logger,
		})
		if err != nil {
			return err
		}

		created, err := authService.BootstrapAdmin(cmd.Context(), adminUsername, password)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		if !created {
			role, _, err := store.UsernameTaken(cmd.Context(), adminUsername)
			if err != nil {
				return err
			}
			return fmt.Errorf("username %q is already used by a %s account", adminUsername, role)
		}
		pterm.Success.Printf("Administrator %s created\n", adminUsername)
		return nil
	},
}

func init() {
	adminsCreateCmd.Flags().StringVar(&adminUsername, "username", "", "Login name of the administrator")
	adminsCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Initial password")
	adminsCreateCmd.Flags().BoolVar(&adminStdin, "stdin", false, "Read the password from stdin")
	adminsCmd.AddCommand(adminsCreateCmd)
}
