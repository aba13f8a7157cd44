package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List audio files on the speaker",
	Long:  `List the audio files stored on the speaker and their playback state.`,
	RunE:  runFiles,
}

var pushName string

var pushCmd = &cobra.Command{
	Use:   "push <path>",
	Short: "Upload an MP3 to the speaker",
	Long: `Upload a local MP3 file to the speaker's storage.

Examples:
  dahuactl push ./doorbell.mp3
  dahuactl push ./doorbell.mp3 --name front-door.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().StringVar(&pushName, "name", "", "Name to store the file under (default: local file name)")
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(pushCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	files, err := speaker.Files(ctx)
	if err != nil {
		return suggest(fmt.Errorf("failed to list files: %w", err))
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(files)
	}

	if len(files) == 0 {
		fmt.Println("No audio files on the speaker")
		return nil
	}

	table := NewTable("", "ID", "NAME", "SIZE")
	for _, f := range files {
		table.Row(
			StatusIcon(f.Playing),
			fmt.Sprintf("%d", f.ID),
			TruncateString(f.Name, 40),
			humanize.Bytes(uint64(f.Size)),
		)
	}
	table.Flush()

	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	file, err := speaker.Push(ctx, path, pushName)
	if err != nil {
		return suggest(fmt.Errorf("failed to upload %s: %w", path, err))
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(file)
	}

	fmt.Printf("⬆ Uploaded %s (%s, id %d)\n", file.Name, humanize.Bytes(uint64(file.Size)), file.ID)
	return nil
}
