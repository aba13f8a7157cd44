package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vcsh30/dahuactl/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view of the speaker state, the stored
audio files and recent events.

Keyboard shortcuts:
  q, Ctrl+C    Quit
  Space        Play/Stop selected file
  ↑/↓, j/k     Select file
  +/-          Volume up/down
  m            Mute/Unmute`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default: from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard requires an interactive terminal")
	}

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	refresh := tuiRefresh
	if refresh == 0 {
		refresh = cfg.TUI.RefreshInterval
	}

	return tui.Run(speaker, time.Duration(refresh)*time.Millisecond)
}
