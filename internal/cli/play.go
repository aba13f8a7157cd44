package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var playFile string

var playCmd = &cobra.Command{
	Use:   "play [name]",
	Short: "Play an audio file stored on the speaker",
	Long: `Start playback of an audio file already stored on the speaker.
With --file, the local MP3 is uploaded first and then played.

Examples:
  dahuactl play chime.mp3              # Play a stored file
  dahuactl play --file ./alert.mp3     # Upload and play a local file`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playFile, "file", "f", "", "Local MP3 to upload before playing")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	var name string
	switch {
	case playFile != "":
		uploaded, err := speaker.Push(ctx, playFile, "")
		if err != nil {
			return suggest(fmt.Errorf("failed to upload %s: %w", playFile, err))
		}
		name = uploaded.Name
		if !JSONOutput() {
			fmt.Printf("⬆ Uploaded %s\n", name)
		}
	case len(args) > 0:
		name = args[0]
	default:
		return fmt.Errorf("specify a stored file name or --file to upload one")
	}

	if err := speaker.Play(ctx, name); err != nil {
		return suggest(fmt.Errorf("failed to play %s: %w", name, err))
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"state": "playing",
			"file":  name,
		})
	} else {
		fmt.Printf("▶ Playing %s\n", name)
	}

	return nil
}
