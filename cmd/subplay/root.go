package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"subplay/pkg/config"
	"subplay/pkg/layout"
	"subplay/pkg/logging"
	"subplay/pkg/overlay"
	"subplay/pkg/player"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subplay",
	Short: "Subtitle overlay engine for an editor-embedded video player",
	Long: `subplay finds and loads the sidecar subtitle of a video, follows the
playback clock to pick the active cue, lays its words out as hoverable boxes
and downloads missing subtitles in the background.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func style() layout.Style {
	return layout.Style{
		Gap:          cfg.Layout.Gap,
		LineGap:      cfg.Layout.LineGap,
		WrapMargin:   cfg.Layout.WrapMargin,
		BottomMargin: cfg.Layout.BottomMargin,
	}
}

func wordMeasurer() (*layout.FaceMeasurer, error) {
	m, err := layout.NewFaceMeasurer(cfg.Layout.FontSize, cfg.Layout.TextMargin)
	if err != nil {
		return nil, fmt.Errorf("subtitle font: %w", err)
	}
	return m, nil
}

func playerOptions() player.Options {
	return player.Options{
		SeekStep:       cfg.Player.SeekStep,
		VolumeStep:     cfg.Player.VolumeStep,
		WheelThreshold: cfg.Player.WheelThreshold,
		PanelHeight:    cfg.Player.PanelHeight,
		Style:          style(),
		Commands: overlay.Commands{
			Lookup:  cfg.Host.LookupCommand,
			Explain: cfg.Host.ExplainCommand,
		},
	}
}
