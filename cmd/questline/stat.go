package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/aretw0/questline/internal/config"
	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/spf13/cobra"
)

// statCmd represents the stat command
var statCmd = &cobra.Command{
	Use:   "stat [storyline]",
	Short: "Print the counters recorded for a storyline",
	Long: `Reads the mission completion counters and the answer counters of every select item
from the configured counter sink.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Counter == config.CounterNone {
			return errors.New("no counter configured, set --counter or QUESTLINE_COUNTER")
		}
		logger := logging.NewNop()
		eng, err := loadEngine(cfg, logger)
		if err != nil {
			return err
		}
		ctx := context.Background()
		st, err := buildStack(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COUNTER\tVALUE")
		for _, key := range counterKeys(eng.Storyline) {
			n, err := st.Counter.Count(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", key, err)
			}
			fmt.Fprintf(tw, "%s\t%d\n", key, n)
		}
		return tw.Flush()
	},
}

// counterKeys lists the keys a playthrough of sl can bump: one per step and one per stored select.
func counterKeys(sl *domain.Storyline) []string {
	var missions []string
	responses := make(map[string]bool)
	for _, missionID := range sl.MissionIDs() {
		m := sl.Missions[missionID]
		for _, stepID := range m.StepIDs() {
			step := m.Steps[stepID]
			missions = append(missions, domain.MissionCounterKey(step.Ref()))
			for _, item := range step.Dialog.Items {
				if sel, ok := item.(*domain.Select); ok && sel.StoreKey != "" {
					responses[domain.ResponseCounterKey(sel.StoreKey)] = true
				}
			}
		}
	}
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return append(missions, keys...)
}
