package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/crossmap/pkg/card"
	"github.com/codeGROOVE-dev/crossmap/pkg/ingest"
	"github.com/codeGROOVE-dev/crossmap/pkg/report"
	"github.com/codeGROOVE-dev/crossmap/pkg/reportcache"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->...",
	Short: "Build a report from card sources",
	Long: `Load cards from JSON Lines or JSON array sources and print the combined
report. Records that fail validation are logged and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

// Flags
var (
	analyzeThreshold   int
	analyzeBridgeLimit int
	analyzeFormat      string
	analyzeNoCache     bool
	analyzeCacheTTL    time.Duration
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeThreshold, "threshold", 70, "similarity threshold (0-100)")
	analyzeCmd.Flags().IntVar(&analyzeBridgeLimit, "bridge-limit", 15, "maximum bridge profiles to list (0 for all)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json or text")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "disable the report cache")
	analyzeCmd.Flags().DurationVar(&analyzeCacheTTL, "cache-ttl", 24*time.Hour, "report cache time-to-live")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := globalConfig
	threshold, bridgeLimit := cfg.Analysis.Threshold, cfg.Analysis.BridgeLimit
	if cmd.Flags().Changed("threshold") {
		threshold = analyzeThreshold
	}
	if cmd.Flags().Changed("bridge-limit") {
		bridgeLimit = analyzeBridgeLimit
	}
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("threshold %d out of range 0-100", threshold)
	}
	if bridgeLimit < 0 {
		return fmt.Errorf("bridge limit %d must not be negative", bridgeLimit)
	}
	if analyzeFormat != "json" && analyzeFormat != "text" {
		return fmt.Errorf("unknown format %q", analyzeFormat)
	}

	ctx := cmd.Context()
	batches, err := ingest.Load(ctx, args, ingest.WithLogger(logger), ingest.WithStdin(cmd.InOrStdin()))
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}

	store := card.NewStore(card.WithLogger(logger))
	var rejected int
	for _, b := range batches {
		_, r := b.AddTo(store, logger)
		rejected += len(r)
	}
	if rejected > 0 {
		logger.Warn("some records were rejected", "rejected", rejected, "accepted", store.Len())
	}

	builder := report.New(store,
		report.WithThreshold(threshold),
		report.WithBridgeLimit(bridgeLimit),
		report.WithLogger(logger),
	)
	out := cmd.OutOrStdout()

	if analyzeFormat == "text" {
		return report.WriteText(out, builder.Build())
	}

	cache := openCache(cmd)
	if cache == nil {
		return report.WriteJSON(out, builder.Build())
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}()

	key, cards := builder.Fingerprint()
	data, err := cache.Report(ctx, key, func() *report.Report { return builder.BuildFrom(cards) })
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Debug("report cache", "hit_rate", cache.Stats().HitRate())
	return nil
}

// openCache returns nil when caching is disabled or unavailable.
func openCache(cmd *cobra.Command) *reportcache.Cache {
	cfg := globalConfig.Cache
	if analyzeNoCache || !cfg.Enabled {
		return nil
	}
	ttl := cfg.TTL
	if cmd.Flags().Changed("cache-ttl") {
		ttl = analyzeCacheTTL
	}

	var (
		cache *reportcache.Cache
		err   error
	)
	if cfg.Dir != "" {
		cache, err = reportcache.NewWithPath(ttl, cfg.Dir, logger)
	} else {
		cache, err = reportcache.New(ttl, logger)
	}
	if err != nil {
		logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		return nil
	}
	logger.Debug("report cache initialized", "ttl", ttl.String())
	return cache
}
