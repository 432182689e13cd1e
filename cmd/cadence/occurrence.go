package main

import (
	"context"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/views"
)

func occurrenceCmd() *cobra.Command {
	occ := &cobra.Command{Use: "occurrence", Aliases: []string{"occ"}, Short: "Inspect and close occurrences"}
	occ.AddCommand(occurrenceListCmd())
	occ.AddCommand(occurrenceCloseCmd())
	return occ
}

func occurrenceListCmd() *cobra.Command {
	var (
		scheduleID string
		status     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List occurrences of one schedule, or the agenda across all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.Status
			if status != "" {
				parsed, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				var items []materializer.AgendaItem
				if scheduleID == "" {
					agenda, err := rt.m.Agenda(ctx, filter)
					if err != nil {
						return err
					}
					items = agenda
				} else {
					occs, err := rt.m.ListOccurrences(ctx, scheduleID)
					if err != nil {
						return err
					}
					for _, o := range occs {
						if filter == "" || o.Status == filter {
							items = append(items, materializer.AgendaItem{Occurrence: o})
						}
					}
				}
				if jsonOutput() {
					out := make([]model.Occurrence, 0, len(items))
					for _, item := range items {
						out = append(out, item.Occurrence)
					}
					return printJSON(out)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Date", "Day", "Task", "Schedule", "Status"})
				for _, item := range items {
					o := item.Occurrence
					task := item.TaskTitle
					if task == "" {
						task = o.TaskID
					}
					tw.AppendRow(table.Row{o.ID, model.FormatDate(o.Date), model.WeekdayName(model.Weekday(o.Date)), task, o.ScheduleID, views.StatusBadge(o.Status)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&scheduleID, "schedule", "", "schedule id")
	cmd.Flags().StringVar(&status, "status", "", "only this status (pending, done, cancelled, skipped)")
	return cmd
}

func occurrenceCloseCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "close <occurrence-id>",
		Short: "Close a pending occurrence and materialize the next one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseStatus(status)
			if err != nil {
				return err
			}
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				next, err := rt.m.Close(ctx, args[0], st)
				if err != nil {
					return err
				}
				return printNext(next)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "done", "done, cancelled or skipped")
	return cmd
}
