// Command rabbithole-analyze reads browsing history from an export file or a
// browser SQLite snapshot, runs the analysis engine, and writes the report as
// JSON on stdout. Logs go to stderr so stdout stays parseable
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"rabbithole/internal/adapters/rules"
	"rabbithole/internal/adapters/source/export"
	"rabbithole/internal/adapters/source/snapshot"
	"rabbithole/internal/core/history"
	"rabbithole/internal/core/insights"
	"rabbithole/internal/core/version"
	"rabbithole/internal/platform/config"
	perr "rabbithole/internal/platform/errors"
	"rabbithole/internal/platform/logger"
	"rabbithole/internal/services/analyze/domain"
	"rabbithole/internal/services/analyze/service"
	"rabbithole/internal/services/analyze/source"
)

func main() {
	logger.Init(logger.FromEnv("RABBIT_LOG_"))
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.New().Prefix("RABBIT_")

	fs := flag.NewFlagSet("rabbithole-analyze", flag.ContinueOnError)
	var (
		input       = fs.String("input", cfg.MayString("INPUT", ""), "export file (JSON array or NDJSON); '-' reads stdin")
		snapPath    = fs.String("snapshot", cfg.MayString("SNAPSHOT", ""), "browser history SQLite snapshot")
		browser     = fs.String("browser", cfg.MayString("BROWSER", "auto"), "snapshot schema: auto|chrome|firefox|safari")
		since       = fs.Duration("since", cfg.MayDuration("SINCE", 0), "only snapshot visits newer than this age, e.g. 720h (0 = all)")
		limit       = fs.Int("limit", cfg.MayInt("LIMIT", 0), "most recent snapshot rows to read (0 = all)")
		depth       = fs.String("depth", cfg.MayString("DEPTH", ""), "quick_summary|basic|comprehensive (default comprehensive)")
		sessionGap  = fs.Duration("session-gap", cfg.MayDuration("SESSION_GAP", 0), "inactivity gap that starts a new session (default 30m)")
		learningGap = fs.Duration("learning-gap", cfg.MayDuration("LEARNING_GAP", 0), "gap that splits learning paths (default 15m)")
		rulesPath   = fs.String("rules", cfg.MayString("RULES_FILE", ""), "YAML tuning file: overrides, extra domains, weights, gaps")
		packPath    = fs.String("pack", cfg.MayString("PACK_FILE", ""), "replace the embedded rule pack with this rules JSON file")
		topN        = fs.Int("top", cfg.MayInt("TOP_DOMAINS", 0), "cap the domain stats table (0 = all)")
		maxEntries  = fs.Int("max-entries", cfg.MayInt("MAX_ENTRIES", 0), "analyze only the most recent N entries (0 = all)")
		epoch       = fs.String("epoch", cfg.MayString("EPOCH", ""), "numeric timestamp encoding: auto|unix_s|unix_ms|unix_us|unix_ns|webkit|cocoa")
		outPath     = fs.String("out", "", "write the report here instead of stdout")
		pretty      = fs.Bool("pretty", false, "indent the JSON output")
		envelope    = fs.Bool("envelope", false, "wrap the report in the run envelope (run id, engine, timings)")
		showVer     = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return perr.ExitUsage
	}

	if *showVer {
		fmt.Println(version.Info().String())
		return perr.ExitOK
	}

	var src domain.RowSource
	switch {
	case *input != "" && *snapPath != "":
		return fail(perr.InvalidArgf("pass either -input or -snapshot, not both"))
	case *input != "":
		src = source.Export(*input, export.Options{})
	case *snapPath != "":
		b, err := snapshot.ParseBrowser(*browser)
		if err != nil {
			return fail(err)
		}
		var lower time.Time
		if *since > 0 {
			lower = time.Now().UTC().Add(-*since)
		}
		src = source.Snapshot(*snapPath, b, lower, *limit)
	default:
		fs.Usage()
		return fail(perr.InvalidArgf("one of -input or -snapshot is required"))
	}

	opts, err := buildOptions(*depth, *epoch, *sessionGap, *learningGap, *topN, *maxEntries, *rulesPath, *packPath)
	if err != nil {
		return fail(err)
	}

	out, err := service.New().Run(context.Background(), domain.RunInput{Source: src, Options: opts})
	if err != nil {
		return fail(err)
	}

	var payload any = out.Report
	if *envelope {
		payload = out
	}
	if err := emit(*outPath, *pretty, payload); err != nil {
		return fail(err)
	}
	return perr.ExitOK
}

// buildOptions assembles engine options with flag/env values winning over the
// rules file, which wins over built-in defaults
func buildOptions(depth, epoch string, sessionGap, learningGap time.Duration, topN, maxEntries int, rulesPath, packPath string) (insights.Options, error) {
	d, err := insights.ParseDepth(depth)
	if err != nil {
		return insights.Options{}, err
	}
	ep, err := history.ParseEpoch(epoch)
	if err != nil {
		return insights.Options{}, perr.WithField(perr.Validationf("%v", err), "epoch")
	}

	opts := insights.Options{
		SessionGap:  sessionGap,
		LearningGap: learningGap,
		Depth:       d,
		TopDomains:  topN,
		MaxEntries:  maxEntries,
		Epoch:       ep,
	}
	if packPath != "" {
		if opts.Pack, err = rules.LoadPack(packPath); err != nil {
			return insights.Options{}, err
		}
	}

	f, err := rules.LoadOrDefault(rulesPath)
	if err != nil {
		return insights.Options{}, err
	}
	return f.Apply(opts)
}

// emit writes the payload as JSON to path, or stdout when path is empty or "-"
func emit(path string, pretty bool, payload any) error {
	w := os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return perr.Wrapf(err, perr.CodeInvalidArgument, "create output %s", path)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(payload); err != nil {
		return perr.Wrapf(err, perr.CodeJSON, "encode report")
	}
	return nil
}

// fail logs the error for humans and emits the wire form for tools, then
// maps the error to its process exit code
func fail(err error) int {
	logger.Get().Error().Err(err).Msg("analyze failed")
	if wire, jerr := json.Marshal(perr.WireFrom(err)); jerr == nil {
		_, _ = fmt.Fprintln(os.Stderr, string(wire))
	}
	return perr.ExitCode(err)
}
