package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/cadence/internal/ics"
	"github.com/sandeepkv93/cadence/internal/model"
)

func exportCmd() *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Export schedules to other formats"}
	export.AddCommand(exportICSCmd())
	return export
}

func exportICSCmd() *cobra.Command {
	var (
		scheduleIDs []string
		output      string
	)
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write schedules and occurrences as iCalendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				schedules, err := selectSchedules(ctx, rt, scheduleIDs)
				if err != nil {
					return err
				}
				series := make([]ics.Series, 0, len(schedules))
				for _, s := range schedules {
					task, err := rt.m.Task(ctx, s.TaskID)
					if err != nil {
						return err
					}
					occs, err := rt.m.ListOccurrences(ctx, s.ID)
					if err != nil {
						return err
					}
					series = append(series, ics.Series{Task: task, Schedule: s, Occurrences: occs})
				}

				var out io.Writer = os.Stdout
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}
				if err := ics.Write(out, series, time.Now().UTC()); err != nil {
					return err
				}
				rt.logger.Info("calendar exported", "schedules", len(series), "output", output)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&scheduleIDs, "schedule", nil, "schedule id, repeatable; all schedules when omitted")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func selectSchedules(ctx context.Context, rt app, ids []string) ([]model.Schedule, error) {
	if len(ids) == 0 {
		return rt.m.Schedules(ctx, "")
	}
	out := make([]model.Schedule, 0, len(ids))
	for _, id := range ids {
		s, err := rt.m.Schedule(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
