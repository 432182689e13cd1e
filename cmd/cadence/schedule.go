package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
	"github.com/sandeepkv93/cadence/internal/schedfile"
	"github.com/sandeepkv93/cadence/internal/views"
)

func scheduleCmd() *cobra.Command {
	schedule := &cobra.Command{Use: "schedule", Short: "Manage recurrence schedules"}
	schedule.AddCommand(scheduleAddCmd())
	schedule.AddCommand(scheduleListCmd())
	schedule.AddCommand(scheduleEditCmd())
	schedule.AddCommand(scheduleShowCmd())
	schedule.AddCommand(schedulePreviewCmd())
	schedule.AddCommand(scheduleDeleteCmd())
	schedule.AddCommand(scheduleImportCmd())
	schedule.AddCommand(scheduleRegenerateCmd())
	return schedule
}

// ruleFlags holds the rule flags shared by add and edit.
type ruleFlags struct {
	start    string
	end      string
	dow      string
	interval int
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "inclusive end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dow, "dow", "", "day of week, 0=Monday..6=Sunday or a day name")
	cmd.Flags().IntVar(&f.interval, "interval", 0, "interval for every_n_* kinds")
}

func (f *ruleFlags) optionalDate(cmd *cobra.Command, name, value string) (mo.Option[time.Time], error) {
	if !cmd.Flags().Changed(name) {
		return mo.None[time.Time](), nil
	}
	d, err := parseDateFlag(name, value)
	if err != nil {
		return mo.None[time.Time](), err
	}
	return mo.Some(d), nil
}

func (f *ruleFlags) weekday(cmd *cobra.Command) (mo.Option[int], error) {
	if !cmd.Flags().Changed("dow") {
		return mo.None[int](), nil
	}
	dow, err := model.ParseWeekday(f.dow)
	if err != nil {
		return mo.None[int](), err
	}
	return mo.Some(dow), nil
}

func optionalInt(cmd *cobra.Command, name string, value int) mo.Option[int] {
	if !cmd.Flags().Changed(name) {
		return mo.None[int]()
	}
	return mo.Some(value)
}

func scheduleAddCmd() *cobra.Command {
	var (
		rules  ruleFlags
		taskID string
		kind   string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a schedule and its first occurrence",
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}
			start, err := parseDateFlag("start", rules.start)
			if err != nil {
				return err
			}
			end, err := rules.optionalDate(cmd, "end", rules.end)
			if err != nil {
				return err
			}
			dow, err := rules.weekday(cmd)
			if err != nil {
				return err
			}
			in := materializer.ScheduleInput{
				TaskID:     taskID,
				Kind:       k,
				StartDate:  start,
				EndDate:    end,
				DayOfWeek:  dow,
				Interval:   optionalInt(cmd, "interval", rules.interval),
			}
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				s, err := rt.m.CreateSchedule(ctx, in)
				if err != nil {
					return err
				}
				return printSchedules(ctx, rt, []model.Schedule{s})
			})
		},
	}
	rules.register(cmd)
	cmd.Flags().StringVar(&taskID, "task", "", "task id")
	cmd.Flags().StringVar(&kind, "kind", "", "once, daily, weekly, monthly, every_n_days, every_n_weeks, every_n_months")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func scheduleListCmd() *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				items, err := rt.m.Schedules(ctx, taskID)
				if err != nil {
					return err
				}
				return printSchedules(ctx, rt, items)
			})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "only schedules of this task")
	return cmd
}

func scheduleEditCmd() *cobra.Command {
	var (
		rules ruleFlags
		noEnd bool
	)
	cmd := &cobra.Command{
		Use:   "edit <schedule-id>",
		Short: "Change rule fields and regenerate the pending occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noEnd && cmd.Flags().Changed("end") {
				return fmt.Errorf("--end and --no-end are mutually exclusive: %w", model.ErrInvalidConfiguration)
			}
			start, err := rules.optionalDate(cmd, "start", rules.start)
			if err != nil {
				return err
			}
			end, err := rules.optionalDate(cmd, "end", rules.end)
			if err != nil {
				return err
			}
			dow, err := rules.weekday(cmd)
			if err != nil {
				return err
			}
			edit := materializer.ScheduleEdit{
				StartDate:    start,
				EndDate:      end,
				ClearEndDate: noEnd,
				DayOfWeek:    dow,
				Interval:     optionalInt(cmd, "interval", rules.interval),
			}
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				s, err := rt.m.UpdateSchedule(ctx, args[0], edit)
				if err != nil {
					return err
				}
				return printSchedules(ctx, rt, []model.Schedule{s})
			})
		},
	}
	rules.register(cmd)
	cmd.Flags().BoolVar(&noEnd, "no-end", false, "remove the end date")
	return cmd
}

func scheduleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <schedule-id>",
		Short: "Describe a schedule with its history and upcoming dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				data, err := summary(ctx, rt, args[0])
				if err != nil {
					return err
				}
				if jsonOutput() {
					return printJSON(data)
				}
				fmt.Print(views.RenderMarkdown(views.ScheduleSummaryMarkdown(data)))
				return nil
			})
		},
	}
}

func summary(ctx context.Context, rt app, id string) (views.ScheduleSummaryData, error) {
	s, err := rt.m.Schedule(ctx, id)
	if err != nil {
		return views.ScheduleSummaryData{}, err
	}
	task, err := rt.m.Task(ctx, s.TaskID)
	if err != nil {
		return views.ScheduleSummaryData{}, err
	}
	history, err := rt.m.ListOccurrences(ctx, id)
	if err != nil {
		return views.ScheduleSummaryData{}, err
	}
	upcoming, err := rt.m.Preview(ctx, id, rt.cfg.PreviewCount)
	if err != nil {
		return views.ScheduleSummaryData{}, err
	}
	rule, _ := recurrence.RRule(s)
	return views.ScheduleSummaryData{Task: task, Schedule: s, RRule: rule, Upcoming: upcoming, History: history}, nil
}

func schedulePreviewCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "preview <schedule-id>",
		Short: "List upcoming dates without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				n := rt.cfg.PreviewCount
				if cmd.Flags().Changed("count") {
					n = count
				}
				dates, err := rt.m.Preview(ctx, args[0], n)
				if err != nil {
					return err
				}
				if jsonOutput() {
					out := make([]string, 0, len(dates))
					for _, d := range dates {
						out = append(out, model.FormatDate(d))
					}
					return printJSON(out)
				}
				fmt.Println(views.RenderPreview(args[0], dates))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of dates")
	return cmd
}

func scheduleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <schedule-id>",
		Short: "Delete a schedule and its occurrences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				if err := rt.m.DeleteSchedule(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
}

func scheduleImportCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create schedules from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = os.Stdin
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				created, err := schedfile.Import(ctx, rt.m, in)
				if err != nil {
					return err
				}
				return printSchedules(ctx, rt, created)
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "-", "YAML file, - for stdin")
	return cmd
}

func scheduleRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <schedule-id>",
		Short: "Rebuild the pending occurrence from confirmed history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				next, err := rt.m.Produce(ctx, args[0], recurrence.Regenerate)
				if err != nil {
					return err
				}
				return printNext(next)
			})
		},
	}
}

type scheduleRow struct {
	model.Schedule
	Pending string `json:"pending,omitempty"`
	Rule    string `json:"rule"`
}

func printSchedules(ctx context.Context, rt app, items []model.Schedule) error {
	rows := make([]scheduleRow, 0, len(items))
	for _, s := range items {
		row := scheduleRow{Schedule: s, Rule: views.Describe(s)}
		dates, err := rt.m.Preview(ctx, s.ID, 1)
		if err != nil {
			return err
		}
		if len(dates) > 0 {
			row.Pending = model.FormatDate(dates[0])
		}
		rows = append(rows, row)
	}
	if jsonOutput() {
		return printJSON(rows)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Task", "Kind", "Rule", "Next"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.ID, r.TaskID, r.Kind, r.Rule, r.Pending})
	}
	tw.Render()
	return nil
}

func printNext(next mo.Option[time.Time]) error {
	d, ok := next.Get()
	if jsonOutput() {
		if !ok {
			return printJSON(map[string]any{"next": nil})
		}
		return printJSON(map[string]any{"next": model.FormatDate(d)})
	}
	if !ok {
		fmt.Println("no occurrence created")
		return nil
	}
	fmt.Println("next occurrence:", model.FormatDate(d))
	return nil
}
