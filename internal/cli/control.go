package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	Long:  `Stop any audio currently playing on the speaker.`,
	RunE:  runStop,
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Mute the speaker",
	Long:  `Drop the speaker volume to zero, remembering the previous level.`,
	RunE:  runMute,
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Unmute the speaker",
	Long:  `Restore the volume to the level before the last mute.`,
	RunE:  runUnmute,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the output volume (0-100) or adjust it up/down. The speaker
resolves volume in steps of 10%.

Examples:
  dahuactl volume 50      # Set volume to 50%
  dahuactl volume --up    # Increase volume by 10%
  dahuactl volume --down  # Decrease volume by 10%`,
	RunE: runVolume,
}

func init() {
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "Increase volume by 10%")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "Decrease volume by 10%")

	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(volumeCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	if err := speaker.Stop(ctx); err != nil {
		return suggest(fmt.Errorf("failed to stop: %w", err))
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"state": "idle"})
	} else {
		fmt.Println("⏹ Stopped")
	}

	return nil
}

func runMute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	if err := speaker.Mute(ctx); err != nil {
		return suggest(fmt.Errorf("failed to mute: %w", err))
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]bool{"muted": true})
	} else {
		fmt.Println("🔇 Muted")
	}

	return nil
}

func runUnmute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	if err := speaker.Unmute(ctx); err != nil {
		return suggest(fmt.Errorf("failed to unmute: %w", err))
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]bool{"muted": false})
	} else {
		fmt.Println("🔊 Unmuted")
	}

	return nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	status, err := speaker.Status(ctx)
	if err != nil {
		return suggest(err)
	}
	current := status.Volume

	// No argument and no flags: just show the current volume.
	if len(args) == 0 && !volumeUp && !volumeDown {
		if JSONOutput() {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
				"volume": current,
				"muted":  status.Muted,
			})
		} else {
			fmt.Printf("🔊 Volume: %d%%\n", current)
		}
		return nil
	}

	target := current
	switch {
	case volumeUp:
		target = current + 10
		if target > 100 {
			target = 100
		}
	case volumeDown:
		target = current - 10
		if target < 0 {
			target = 0
		}
	default:
		val, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume level: %s", args[0])
		}
		if val < 0 || val > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		target = val
	}

	if err := speaker.SetVolume(ctx, target); err != nil {
		return suggest(fmt.Errorf("failed to set volume: %w", err))
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"volume":   target,
			"previous": current,
		})
	} else {
		fmt.Printf("🔊 Volume: %d%% (was %d%%)\n", target, current)
	}

	return nil
}
