package cli

import (
	"encoding/json"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/marofny/deckhand/internal/shell/client"
	"github.com/marofny/deckhand/internal/shell/docker"
)

// =============================================================================
// plan
// =============================================================================

var (
	planFilter   string
	planOnly     []string
	planShowPlan bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what a deploy would change, without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, config, err := loadManifest()
		if err != nil {
			return err
		}
		api, err := apiClient()
		if err != nil {
			return err
		}

		deploys, err := api.GetPlan(client.PlanRequest{
			Config: config,
			Filter: mergeFilters(planFilter, planOnly),
		})
		if err != nil {
			return err
		}

		summary := summarize(deploys)
		if summary.total() == 0 {
			pterm.Info.Println("No tasks, nothing will be changed")
			return nil
		}
		printSummary(summary, true)

		if planShowPlan {
			raw, err := json.MarshalIndent(deploys, "", "  ")
			if err != nil {
				return err
			}
			pterm.Println(string(raw))
		}
		return nil
	},
}

// =============================================================================
// deploy
// =============================================================================

var (
	deployFilter string
	deployOnly   []string
	deployBuild  []string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Plan, build, upload and apply the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		absContext, config, err := loadManifest()
		if err != nil {
			return err
		}
		api, err := apiClient()
		if err != nil {
			return err
		}

		// --build left unset rebuilds every planned app; --build with values
		// restricts the rebuild set; "--build=" (empty) skips all builds.
		var toBuild []string
		if cmd.Flags().Changed("build") {
			toBuild = deployBuild
			if toBuild == nil {
				toBuild = []string{}
			}
		}

		deploys, err := api.GetPlan(client.PlanRequest{
			Config:  config,
			Filter:  mergeFilters(deployFilter, deployOnly),
			ToBuild: toBuild,
		})
		if err != nil {
			return err
		}

		summary := summarize(deploys)
		if summary.total() == 0 {
			pterm.Info.Println("No tasks, nothing will be changed")
			return nil
		}
		printSummary(summary, true)

		if len(summary.builds) > 0 {
			engine, err := docker.NewDockerClient("")
			if err != nil {
				return err
			}
			defer engine.Close()

			pipeline := &buildPipeline{docker: engine, api: api, contextDir: absContext}
			if err := pipeline.Run(summary.builds); err != nil {
				return err
			}
		}

		result, err := api.Apply(deploys)
		if err != nil {
			return err
		}
		printApplyResult(result)
		return nil
	},
}

// =============================================================================
// rollback
// =============================================================================

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Return the project to its previous deploy",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, config, err := loadManifest()
		if err != nil {
			return err
		}
		api, err := apiClient()
		if err != nil {
			return err
		}

		deploys, err := api.GetRollbackPlan(config)
		if err != nil {
			return err
		}

		summary := summarize(deploys)
		if summary.total() == 0 {
			pterm.Info.Println("No tasks, nothing will be changed")
			return nil
		}
		printSummary(summary, false)

		result, err := api.Apply(deploys)
		if err != nil {
			return err
		}
		printApplyResult(result)
		return nil
	},
}

// printApplyResult reports what the control plane actually did.
func printApplyResult(result *client.ApplyResult) {
	for _, name := range result.Created {
		pterm.Success.Printfln("Created %s", name)
	}
	for _, name := range result.Updated {
		pterm.Success.Printfln("Updated %s", name)
	}
	for _, name := range result.Deleted {
		pterm.Success.Printfln("Deleted %s", name)
	}
}

func init() {
	planCmd.Flags().StringVarP(&planFilter, "filter", "F", "", "plan a single unit")
	planCmd.Flags().StringSliceVar(&planOnly, "only", nil, "plan only the named units")
	planCmd.Flags().BoolVar(&planShowPlan, "show-plan", false, "dump the full plan as JSON")

	deployCmd.Flags().StringVarP(&deployFilter, "filter", "F", "", "deploy a single unit")
	deployCmd.Flags().StringSliceVar(&deployOnly, "only", nil, "deploy only the named units")
	deployCmd.Flags().StringSliceVar(&deployBuild, "build", nil, "rebuild only the named apps (default: all planned apps)")
}
