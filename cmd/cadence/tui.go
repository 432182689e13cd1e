package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/cadence/internal/tui"
)

func tuiCmd() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive occurrence board",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr belongs to the terminal while the board is up
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := tea.LogToFile(logFile, "")
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			}
			return withMaterializerLog(cmd.Context(), logOut, func(ctx context.Context, rt app) error {
				board := tui.New(ctx, rt.m,
					tui.WithLogger(rt.logger),
					tui.WithPreviewCount(rt.cfg.PreviewCount),
				)
				program := tea.NewProgram(board, tea.WithAltScreen(), tea.WithContext(ctx))
				_, err := program.Run()
				return err
			})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file while the board runs")
	return cmd
}
