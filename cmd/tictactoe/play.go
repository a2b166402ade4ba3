package main

import (
	"log/slog"
	"os"

	"github.com/jaminalder/tictactoe-rounds/internal/logging"
	"github.com/jaminalder/tictactoe-rounds/internal/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		opts := []tui.Option{tui.WithLogger(logging.New(os.Stderr, level, "text"))}
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			opts = append(opts, tui.WithProfile(termenv.Ascii))
		}
		sh := tui.NewShell(cmd.OutOrStdout(), nil, opts...)
		return sh.Run(cmd.Context(), cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolP("verbose", "v", false, "Log transitions to stderr")
	playCmd.Flags().Bool("no-color", false, "Disable colors")
}
