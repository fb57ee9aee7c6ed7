package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/questline"
	"github.com/aretw0/questline/internal/config"
	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "questline",
	Short:         "Questline runs mission storylines with branching dialogs",
	Long:          `Questline loads a storyline of dependency-gated missions and plays it in the terminal or serves it over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands). They override QUESTLINE_* variables.
	flags := rootCmd.PersistentFlags()
	flags.StringP("storyline", "s", "", "Storyline file (JSON, or YAML by extension)")
	flags.String("world", "", "World file with character and location positions")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("backend", "", "Answer backend: memory, file or redis")
	flags.String("data-dir", "", "Directory of the file backend")
	flags.String("redis-addr", "", "Redis address for the redis backend or counter")
	flags.String("counter", "", "Counter sink: none, memory, redis or remote")
	flags.String("remote-url", "", "Base URL of the remote counter service")
}

// loadConfig reads the environment and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	overrides := map[string]*string{
		"storyline":  &cfg.Storyline,
		"world":      &cfg.World,
		"backend":    &cfg.AnswerBackend,
		"data-dir":   &cfg.DataDir,
		"redis-addr": &cfg.RedisAddr,
		"counter":    &cfg.Counter,
		"remote-url": &cfg.RemoteURL,
	}
	for name, dst := range overrides {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if len(cmd.Flags().Args()) > 0 && !flags.Changed("storyline") {
		cfg.Storyline = cmd.Flags().Arg(0)
	}
	if flags.Changed("log-level") {
		raw, _ := flags.GetString("log-level")
		if cfg.LogLevel, err = logging.ParseLevel(raw); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// loadEngine parses the configured storyline and world.
func loadEngine(cfg *config.Config, logger *slog.Logger) (*questline.Engine, error) {
	opts := []questline.Option{questline.WithLogger(logger)}
	if cfg.World != "" {
		def, err := memory.LoadWorldDef(cfg.World)
		if err != nil {
			return nil, err
		}
		opts = append(opts, questline.WithWorld(def))
	}
	eng, err := questline.New(cfg.Storyline, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storyline %s: %w", cfg.Storyline, err)
	}
	return eng, nil
}
