package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subplay/pkg/subtitle"
	"subplay/pkg/subtype"
)

var cuesCmd = &cobra.Command{
	Use:   "cues <video|subtitle>",
	Short: "List the cues of a subtitle file or of a video's sidecar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		track, err := loadTrack(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range track.Cues() {
			fmt.Fprintf(out, "%d\t%v\t%v\t%s\n",
				c.Index,
				c.StartTimestamp(),
				subtitle.TimestampFromMillis(c.End),
				strings.ReplaceAll(c.Text, "\n", " / "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cuesCmd)
}

// loadTrack loads path directly when it is a subtitle, otherwise the sidecar
// of the video at path.
func loadTrack(path string) (*subtitle.Track, error) {
	if subtype.FromName(path) != "" {
		return subtitle.Load(path)
	}
	track, subPath, err := subtitle.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("subtitle", filepath.Base(subPath)).Msg("sidecar loaded")
	return track, nil
}
