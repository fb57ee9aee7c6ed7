package main

import (
	"context"
	"fmt"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/session"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [storyline]",
	Short: "Export the storyline as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) with one subgraph per mission, the step chains
and the dependencies between missions. With --progress the completed steps of a saved
game are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := logging.NewNop()
		eng, err := loadEngine(cfg, logger)
		if err != nil {
			return err
		}

		progress, _ := cmd.Flags().GetString("progress")
		if progress == "" {
			fmt.Fprint(cmd.OutOrStdout(), eng.Graph(nil))
			return nil
		}

		ctx := context.Background()
		st, err := buildStack(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		game, err := eng.NewGame(ctx, progress,
			session.WithAnswerBackend(st.Backend),
			session.WithNamespace(progress),
		)
		if err != nil {
			return err
		}
		defer game.Close()
		fmt.Fprint(cmd.OutOrStdout(), eng.Graph(game))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("progress", "", "Highlight the progress stored in this answer namespace (\""+answers.DefaultNamespace+"\" for local play)")
}
