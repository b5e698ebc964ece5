package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/regsweep/regsweep/internal/cleanup"
	"github.com/regsweep/regsweep/internal/config"
	"github.com/regsweep/regsweep/internal/policy"
	"github.com/regsweep/regsweep/internal/registry"
	"github.com/regsweep/regsweep/internal/ui"
	"github.com/regsweep/regsweep/pkg/duration"
	"github.com/regsweep/regsweep/pkg/logger"
)

var (
	cleanDryRun    bool
	cleanAssumeYes bool
	cleanOlderThan string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Prune old image tags according to the retention policy",
	Long: `Fetch the tag inventory of every configured image, apply the retention
policy (per-image overrides layered on the global defaults) and delete the tags
that fall outside it. In dry-run mode the deletion set is computed and reported
but nothing is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.GetLogger()
		log.SetLogLevel(cfg.Logging.Level)
		log.ConfigureFromEnv()

		if cmd.Flags().Changed("dry-run") {
			cfg.Cleanup.DryRun = cleanDryRun
		}
		if cleanOlderThan != "" {
			d, err := duration.Parse(cleanOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			cfg.Cleanup.DaysOld = duration.Days(d)
		}

		resolver, err := policy.NewResolver(cfg.DefaultPolicy(), cfg.Overrides())
		if err != nil {
			return err
		}

		client := registry.NewArtifactory(cfg.Registry.URL, cfg.Registry.Username, cfg.Registry.Password)
		runner := cleanup.NewRunner(client, resolver, cleanup.Options{
			Images:       cfg.Registry.Images,
			Repositories: cfg.Registry.Repositories,
			DryRun:       cfg.Cleanup.DryRun,
		})

		policies, err := runner.EffectivePolicies(cmd.Context())
		if err != nil {
			logger.Warn("Some repositories could not be listed", "error", err)
		}
		fmt.Println(ui.RenderPolicyTable(policies))

		if cfg.Cleanup.DryRun {
			color.Yellow("Mode: DRY RUN")
		} else {
			color.New(color.FgRed, color.Bold).Println("Mode: LIVE DELETION")
			if !cleanAssumeYes {
				proceed := false
				prompt := &survey.Confirm{
					Message: "Live deletion permanently removes tags from the registry. Continue?",
					Default: false,
				}
				if err := survey.AskOne(prompt, &proceed); err != nil {
					return fmt.Errorf("confirmation failed: %w", err)
				}
				if !proceed {
					logger.Info("Run cancelled")
					return nil
				}
			}
		}

		report := runner.Run(cmd.Context())

		fmt.Println(ui.RenderRepositoryTable(report))
		fmt.Println(ui.RenderSummary(report))

		if report.DryRun {
			color.Yellow("This was a dry run. Set dry_run = false in regsweep.toml to actually delete tags.")
		}

		if report.Failed() {
			return fmt.Errorf("%d target(s) failed", report.Total.Errors+report.Total.FailedDeletes)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", true, "compute the deletion set without deleting (overrides config)")
	cleanCmd.Flags().BoolVarP(&cleanAssumeYes, "yes", "y", false, "skip the live-deletion confirmation prompt")
	cleanCmd.Flags().StringVar(&cleanOlderThan, "older-than", "", "override the global age threshold, e.g. 45d or 2w")
}
