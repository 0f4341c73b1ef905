package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subplay/pkg/cache"
	"subplay/pkg/download"
	"subplay/pkg/provider/zimuku"
	"subplay/pkg/rod"
)

var downloadCmd = &cobra.Command{
	Use:   "download <video>",
	Short: "Download a subtitle for a video and save it next to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, closeBrowser, err := newDownloader()
		if err != nil {
			return err
		}
		defer closeBrowser()

		res := d.Fetch(ctx, args[0])
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func newDownloader() (*download.Downloader, func(), error) {
	browser, err := rod.New(rod.Options{
		Dir:      cfg.Download.RodDir,
		Headless: cfg.Download.Headless,
		Trace:    verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	provider := zimuku.New(browser, zimuku.Options{
		Languages: cfg.Download.Languages,
		Limit:     cfg.Download.Limit,
		Timeout:   cfg.Download.Timeout,
	}, logger)
	return downloaderFor(provider), func() { browser.Close() }, nil
}

func downloaderFor(provider download.Provider) *download.Downloader {
	return download.New(provider, cache.New(cfg.Download.CacheDir), download.Options{
		Language: cfg.Download.Language,
		Interval: cfg.Download.Interval,
		Timeout:  cfg.Download.Timeout,
	}, logger)
}
