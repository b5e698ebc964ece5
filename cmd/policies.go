package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regsweep/regsweep/internal/cleanup"
	"github.com/regsweep/regsweep/internal/config"
	"github.com/regsweep/regsweep/internal/policy"
	"github.com/regsweep/regsweep/internal/registry"
	"github.com/regsweep/regsweep/internal/ui"
	"github.com/regsweep/regsweep/pkg/logger"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Show the effective retention policy for every configured image",
	Long: `Resolve the per-image overrides against the global defaults and print the
resulting policy table without touching any tags. Useful for reviewing a config
change before running clean.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.GetLogger()
		log.SetLogLevel(cfg.Logging.Level)
		log.ConfigureFromEnv()

		resolver, err := policy.NewResolver(cfg.DefaultPolicy(), cfg.Overrides())
		if err != nil {
			return err
		}

		client := registry.NewArtifactory(cfg.Registry.URL, cfg.Registry.Username, cfg.Registry.Password)
		runner := cleanup.NewRunner(client, resolver, cleanup.Options{
			Images:       cfg.Registry.Images,
			Repositories: cfg.Registry.Repositories,
		})

		policies, err := runner.EffectivePolicies(cmd.Context())
		fmt.Println(ui.RenderPolicyTable(policies))
		if err != nil {
			return fmt.Errorf("some repositories could not be listed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
