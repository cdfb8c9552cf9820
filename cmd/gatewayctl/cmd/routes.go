package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/domain"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show the route authorization policy in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		matrix, err := auth.NewDefaultMatrix()
		if err != nil {
			return err
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(policyTable(matrix.Rules())).Render()
		return nil
	},
}

var routesCheckCmd = &cobra.Command{
	Use:   "check METHOD PATH [ROLE]",
	Short: "Evaluate a request against the policy",
	Long: `Reports which rule matches METHOD and PATH and whether ROLE is allowed.
Omit ROLE to evaluate an unauthenticated request.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		matrix, err := auth.NewDefaultMatrix()
		if err != nil {
			return err
		}
		method := strings.ToUpper(args[0])
		rule, ok := matrix.Match(method, args[1])
		if !ok {
			pterm.Error.Println("No rule matches; request is denied")
			return nil
		}
		pterm.Info.Printf("Matched rule: %s\n", rule)

		if len(args) == 2 {
			if rule.Public {
				pterm.Success.Println("Allowed without authentication")
			} else {
				pterm.Warning.Println("Authentication required (401)")
			}
			return nil
		}

		role, err := domain.ParseRole(args[2])
		if err != nil {
			return err
		}
		if matrix.Authorize(method, args[1], role) == auth.Allow {
			pterm.Success.Printf("%s is allowed\n", role)
		} else {
			pterm.Error.Printf("%s is forbidden (403)\n", role)
		}
		return nil
	},
}

func init() {
	routesCmd.AddCommand(routesCheckCmd)
}

func policyTable(rules []auth.Rule) pterm.TableData {
	table := pterm.TableData{{"#", "METHOD", "PATTERN", "ACCESS"}}
	for i, rule := range rules {
		access := "public"
		if !rule.Public {
			roles := make([]string, 0, len(rule.Roles))
			for _, r := range rule.Roles {
				roles = append(roles, r.String())
			}
			access = strings.Join(roles, "|")
		}
		table = append(table, []string{fmt.Sprint(i + 1), rule.Method, rule.Pattern, access})
	}
	return table
}
