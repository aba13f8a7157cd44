package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vcsh30/dahuactl/internal/core"
	apperrors "github.com/vcsh30/dahuactl/internal/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current speaker status",
	Long:  `Shows the speaker's playback state, volume and device identity.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	status, err := speaker.Status(ctx)
	if err != nil {
		return suggest(err)
	}

	if JSONOutput() {
		return outputStatusJSON(status)
	}
	outputStatusText(status)
	return nil
}

func outputStatusJSON(status *core.Status) error {
	item := map[string]interface{}{
		"state":  string(status.State),
		"volume": status.Volume,
		"muted":  status.Muted,
	}

	if status.NowPlaying != nil {
		item["now_playing"] = map[string]interface{}{
			"id":   status.NowPlaying.ID,
			"name": status.NowPlaying.Name,
			"size": status.NowPlaying.Size,
		}
	}

	if status.Device != nil {
		item["device"] = map[string]interface{}{
			"name":    status.Device.Name,
			"host":    status.Device.Host,
			"mac":     status.Device.MAC,
			"model":   status.Device.Model,
			"version": status.Device.Version,
		}
	}

	return json.NewEncoder(os.Stdout).Encode(item)
}

func outputStatusText(status *core.Status) {
	name := "Speaker"
	if status.Device != nil && status.Device.Name != "" {
		name = status.Device.Name
	}

	if !status.Available() {
		fmt.Printf("📴 %s is unavailable\n", name)
		return
	}

	stateIcon := "⏹"
	if status.IsPlaying() {
		stateIcon = "▶"
	}

	fmt.Printf("[%s]\n", name)
	if status.NowPlaying != nil {
		fmt.Printf("  %s %s\n", stateIcon, status.NowPlaying.Name)
	} else {
		fmt.Printf("  %s idle\n", stateIcon)
	}

	volumeLabel := fmt.Sprintf("%d%%", status.Volume)
	if status.Muted {
		volumeLabel += " (muted)"
	}
	fmt.Printf("    🔊 %s %s\n", VolumeBar(status.Volume, 20), volumeLabel)

	if status.Device != nil && Verbose() {
		fmt.Printf("    host:    %s\n", status.Device.Host)
		fmt.Printf("    mac:     %s\n", status.Device.MAC)
		fmt.Printf("    model:   %s\n", status.Device.Model)
		fmt.Printf("    version: %s\n", status.Device.Version)
	}
}

// suggest attaches the error's suggestion so the user sees a next step.
func suggest(err error) error {
	if s := apperrors.GetSuggestion(err); s != "" {
		return fmt.Errorf("%w\n\nSuggestion: %s", err, s)
	}
	return err
}
