package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/questline"
	"github.com/aretw0/questline/internal/presentation/tui"
	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/runner"
	"github.com/aretw0/questline/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [storyline]",
	Short: "Play a storyline in the terminal",
	Long: `Starts a local game. Walk around with "go", talk to people with "talk" and
answer dialogs as they come. Answers are kept in the configured backend, so a game resumes
where it stopped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		reset, _ := cmd.Flags().GetBool("reset")
		plain, _ := cmd.Flags().GetBool("plain")

		// Keep the terminal quiet during play unless asked otherwise.
		level := cfg.LogLevel
		if !cmd.Flags().Changed("log-level") && os.Getenv("QUESTLINE_LOG_LEVEL") == "" {
			level = slog.LevelWarn
		}
		cfg.LogLevel = level
		logger := cfg.Logger()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, err := loadEngine(cfg, logger)
		if err != nil {
			return err
		}
		st, err := buildStack(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := []session.GameOption{
			session.WithAnswerBackend(st.Backend),
			session.WithRadius(cfg.Radius()),
		}
		if st.Recorder != nil {
			opts = append(opts, session.WithTelemetry(st.Recorder))
		}
		if reset {
			if err := st.Backend.Clear(ctx, answers.DefaultNamespace); err != nil {
				return err
			}
		}
		game, err := eng.NewGame(ctx, "local", opts...)
		if err != nil {
			return err
		}
		defer game.Close()

		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

		var handler runner.Handler
		switch {
		case jsonMode:
			handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
		case interactive && !plain:
			tui.PrintBanner(os.Stdout, questline.Version)
			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			handler = runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithRenderer(tui.NewRenderer(width)))
		default:
			handler = runner.NewTextHandler(os.Stdin, os.Stdout)
		}

		return runner.NewRunner(handler, runner.WithLogger(logger)).Run(ctx, game)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	playCmd.Flags().Bool("reset", false, "Forget the stored answers and start over")
	playCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
