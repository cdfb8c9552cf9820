package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Session token utilities",
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect TOKEN",
	Short: "Validate a session token with the configured key and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		tokens, err := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL())
		if err != nil {
			return err
		}

		claims, err := tokens.Validate(args[0])
		if err != nil {
			pterm.Error.Printf("Token rejected: %s\n", auth.ReasonOf(err))
			return err
		}

		table := pterm.TableData{
			{"CLAIM", "VALUE"},
			{"sub", claims.Subject},
			{"role", claims.Role},
			{"iat", claims.IssuedAt.UTC().Format(time.RFC3339)},
			{"exp", claims.ExpiresAt.UTC().Format(time.RFC3339)},
		}
		extras := make([]string, 0, len(claims.Extra))
		for k := range claims.Extra {
			extras = append(extras, k)
		}
		sort.Strings(extras)
		for _, k := range extras {
			table = append(table, []string{k, fmt.Sprint(claims.Extra[k])})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)
}
