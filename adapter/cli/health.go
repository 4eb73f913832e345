package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health [store]",
	Short: "Check connectivity of every configured store, or of one store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return ErrNotInitialized
		}
		if len(args) == 1 {
			return checkOne(cmd, app.Health, args[0])
		}

		health := app.Health.GetOverallHealth(cmd.Context())
		out := cmd.OutOrStdout()

		if JSONOutput() {
			if err := PrintJSON(out, health); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "status: %s\n", health.Status)
			names := make([]string, 0, len(health.Checks))
			for name := range health.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				check := health.Checks[name]
				if check.Message != "" {
					fmt.Fprintf(out, "  %s: %s (%s)\n", name, check.Status, check.Message)
					continue
				}
				fmt.Fprintf(out, "  %s: %s\n", name, check.Status)
			}
		}

		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("service unhealthy")
		}
		return nil
	},
}

func checkOne(cmd *cobra.Command, registry *observability.HealthRegistry, name string) error {
	result, ok := registry.CheckOne(cmd.Context(), name)
	if !ok {
		return fmt.Errorf("unknown store %q, configured: %s", name, strings.Join(registry.Names(), ", "))
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		if err := PrintJSON(out, result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s: %s (%s)\n", name, result.Status, result.Message)
	}

	if result.Status == observability.HealthStatusUnhealthy {
		return fmt.Errorf("%s unhealthy", name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
