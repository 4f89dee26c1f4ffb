// Command rabbithole-categories surfaces the domains the rules could not
// categorize and prints them as ready-to-edit YAML override stanzas. The
// workflow: run this, assign categories to the lines you care about, paste
// them into your rules file, and pass it back with -rules
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rabbithole/internal/adapters/rules"
	"rabbithole/internal/adapters/source/export"
	"rabbithole/internal/adapters/source/snapshot"
	"rabbithole/internal/core/categorizer"
	"rabbithole/internal/core/insights"
	"rabbithole/internal/core/taxonomy"
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

	fs := flag.NewFlagSet("rabbithole-categories", flag.ContinueOnError)
	var (
		input     = fs.String("input", cfg.MayString("INPUT", ""), "export file (JSON array or NDJSON); '-' reads stdin")
		snapPath  = fs.String("snapshot", cfg.MayString("SNAPSHOT", ""), "browser history SQLite snapshot")
		browser   = fs.String("browser", cfg.MayString("BROWSER", "auto"), "snapshot schema: auto|chrome|firefox|safari")
		since     = fs.Duration("since", cfg.MayDuration("SINCE", 0), "only snapshot visits newer than this age, e.g. 720h (0 = all)")
		limit     = fs.Int("limit", cfg.MayInt("LIMIT", 0), "most recent snapshot rows to read (0 = all)")
		rulesPath = fs.String("rules", cfg.MayString("RULES_FILE", ""), "YAML tuning file whose overrides are applied before suggesting")
		packPath  = fs.String("pack", cfg.MayString("PACK_FILE", ""), "replace the embedded rule pack with this rules JSON file")
		outPath   = fs.String("out", "", "write the stanzas here instead of stdout")
		showVer   = fs.Bool("version", false, "print version and exit")
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

	opts := insights.Options{Depth: insights.DepthBasic}
	if *packPath != "" {
		var err error
		if opts.Pack, err = rules.LoadPack(*packPath); err != nil {
			return fail(err)
		}
	}
	f, err := rules.LoadOrDefault(*rulesPath)
	if err != nil {
		return fail(err)
	}
	if opts, err = f.Apply(opts); err != nil {
		return fail(err)
	}

	out, err := service.New().Run(context.Background(), domain.RunInput{Source: src, Options: opts})
	if err != nil {
		return fail(err)
	}

	w := os.Stdout
	if *outPath != "" && *outPath != "-" {
		file, err := os.Create(*outPath)
		if err != nil {
			return fail(perr.Wrapf(err, perr.CodeInvalidArgument, "create output %s", *outPath))
		}
		defer func() { _ = file.Close() }()
		w = file
	}
	render(w, out.Report)
	return perr.ExitOK
}

// render prints the uncategorized roster as commented YAML override lines,
// most visited domains first
func render(w io.Writer, report *insights.Report) {
	roster := report.UncategorizedDomains
	if len(roster) == 0 {
		fmt.Fprintf(w, "# every one of the %d domains matched a rule; nothing to suggest\n", report.UniqueDomains)
		return
	}

	names := make([]string, 0, len(taxonomy.All())-1)
	for _, c := range taxonomy.All() {
		if c != taxonomy.Uncategorized {
			names = append(names, string(c))
		}
	}

	fmt.Fprintf(w, "# %d of %d domains had no category\n", len(roster), report.UniqueDomains)
	fmt.Fprintf(w, "# uncomment a line, replace the category, and pass this file back with -rules\n")
	fmt.Fprintf(w, "# categories: %s\n", strings.Join(names, " | "))
	fmt.Fprintln(w, "category_overrides:")
	for _, u := range roster {
		fmt.Fprintf(w, "  # %s\n", describe(u))
		fmt.Fprintf(w, "  #%s: %s\n", u.Domain, taxonomy.Uncategorized)
	}
}

// describe renders one roster line: counts plus up to two sample titles
func describe(u categorizer.Uncategorized) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d entries, %d visits", u.Entries, u.VisitCount)
	for i, title := range u.SampleTitles {
		if i == 2 {
			break
		}
		if i == 0 {
			b.WriteString("; e.g. ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", title)
	}
	return b.String()
}

// fail logs the error and maps it to the process exit code
func fail(err error) int {
	logger.Get().Error().Err(err).Msg("categories failed")
	return perr.ExitCode(err)
}
