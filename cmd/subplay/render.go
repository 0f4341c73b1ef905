package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subplay/pkg/layout"
)

var (
	renderAt     int64
	renderWidth  float64
	renderHeight float64
)

var renderCmd = &cobra.Command{
	Use:   "render <video|subtitle>",
	Short: "Lay out the cue active at a position and print the word boxes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		track, err := loadTrack(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, cue, ok := track.UpdatePosition(float64(renderAt))
		if !ok {
			fmt.Fprintln(out, "no cue")
			return nil
		}

		m, err := wordMeasurer()
		if err != nil {
			return err
		}
		defer m.Close()

		l := layout.Flow(cue.Text, m, layout.Viewport{Width: renderWidth, Height: renderHeight}, style())
		fmt.Fprintf(out, "cue %d at %v: %d words, bounds %.1f,%.1f %.1fx%.1f\n",
			cue.Index, cue.StartTimestamp(), len(l.Words), l.Bounds.X, l.Bounds.Y, l.Bounds.W, l.Bounds.H)
		for i, w := range l.Words {
			fmt.Fprintf(out, "%d\t%.1f,%.1f\t%.1fx%.1f\t%s\n", i, w.Pos.X, w.Pos.Y, w.Width, w.Height, w.Text)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().Int64Var(&renderAt, "at", 0, "playback position in milliseconds")
	renderCmd.Flags().Float64Var(&renderWidth, "width", 1280, "viewport width")
	renderCmd.Flags().Float64Var(&renderHeight, "height", 720, "viewport height")
	rootCmd.AddCommand(renderCmd)
}
