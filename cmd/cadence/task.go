package main

import (
	"context"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/cadence/internal/model"
)

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskAddCmd())
	task.AddCommand(taskListCmd())
	return task
}

func taskAddCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				t, err := rt.m.CreateTask(ctx, title, description)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return printJSON(t)
				}
				renderTasks([]model.Task{t})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaterializer(cmd.Context(), func(ctx context.Context, rt app) error {
				tasks, err := rt.m.Tasks(ctx)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return printJSON(tasks)
				}
				renderTasks(tasks)
				return nil
			})
		},
	}
}

func renderTasks(tasks []model.Task) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Title", "Description", "Created"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.Title, t.Description, t.CreatedAt.Format("2006-01-02 15:04")})
	}
	tw.Render()
}
