package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/questline/internal/logging"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [storyline]",
	Short: "Lint a storyline",
	Long: `Checks that every first step and next step exists, that NPC and location targets are
on the map (when a world file is given) and that dependencies can be satisfied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		eng, err := loadEngine(cfg, logging.NewNop())
		if err != nil {
			return err
		}
		report := eng.Validate()

		out := cmd.OutOrStdout()
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, issue := range report {
				fmt.Fprintln(out, issue)
			}
		}

		if err := report.Err(); err != nil {
			return err
		}
		if !asJSON {
			fmt.Fprintf(out, "%s is valid (%d missions, %d warnings)\n", cfg.Storyline, len(eng.Storyline.Missions), len(report))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the issues as JSON")
}
