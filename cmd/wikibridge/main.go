// The command "wikibridge" builds a correspondence table mapping the same
// Wikipedia article across several language editions, joined through one
// bridge edition's titles.
//
// For each requested language it downloads that edition's langlinks and
// page SQL dumps, extracts (local title, bridge title) pairs, and then
// inner-joins all languages on the bridge title. The result is one CSV row
// per concept, one column per language, bridge column last.
//
// Example usages:
//
//	# Japanese-English table joined through Latin:
//	wikibridge build --bridge la ja en
//
//	# Four Romance languages joined through Latin, tab-separated:
//	wikibridge build --bridge la --tsv es fr it pt
//
//	# Rerun the join from cached pair files (no download, no dump scan):
//	wikibridge merge --bridge la ja en
//
//	# Coverage run: keep every concept, mark gaps with empty fields:
//	wikibridge build --bridge la --policy outer --skip-download ja en de
//
// Dumps are cached on disk and downloads resume from partial files, so an
// interrupted run picks up where it left off.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/Migoreng/wikipedia-multilingual-links/internal/export"
	"github.com/Migoreng/wikipedia-multilingual-links/internal/fetch"
	"github.com/Migoreng/wikipedia-multilingual-links/internal/names"
	"github.com/Migoreng/wikipedia-multilingual-links/internal/pairfile"
	"github.com/Migoreng/wikipedia-multilingual-links/pkg/langtable"
	"github.com/Migoreng/wikipedia-multilingual-links/pkg/sqldump"
)

// --- CLI help / usage -------------------------------------------------------

const helpText = `wikibridge - multilingual Wikipedia correspondence table builder

Usage:
  wikibridge help
      Print this help message.

  wikibridge build [flags] <lang> <lang> [<lang>...]
      Download each language's langlinks and page dumps, extract
      (local title, bridge title) pairs, and join all languages on the
      bridge title into one table.

  wikibridge merge [flags] <lang> <lang> [<lang>...]
      Join languages from pair files produced by an earlier "build",
      skipping download and dump scanning entirely.

Flags:
  --bridge CODE
      Bridge language whose titles serve as the join key (default "la").
      Must not itself be one of the requested languages.

  --policy inner|outer
      Join policy (default "inner").
        inner: keep only concepts present in every requested language.
        outer: keep every observed concept; languages lacking a title get
               an empty field. Meant for coverage diagnostics.

  --output PATH
      Output file (default "<lang1>_..._<bridge>_table.csv", or .tsv
      with --tsv).

  --tsv
      Write tab-separated output instead of comma-separated.

  --cache-dir DIR
      Directory for downloaded dump files (default "dumps").

  --pairs-dir DIR
      Directory for per-language pair files (default "pairs").

  --mirror URL
      Dump mirror base URL (default "https://dumps.wikimedia.org").

  --skip-download
      Use dump files already present in --cache-dir ("build" only).

  --names FILE
      YAML file of extra code-to-name mappings for progress output,
      e.g. "eo: Esperanto". Output headers always use bare codes.

  --quiet
      Suppress progress lines; errors and the final summary still print.

Output format:
  One header row with language codes (bridge last), then one row per
  concept, sorted by bridge title. An empty field means the language has
  no article for that concept (outer policy only); article titles are
  never empty, so the empty field is unambiguous.

Exit status:
  0  table written
  1  invalid configuration or I/O failure
  2  no correspondence found (inner join empty; usually a missing or
     mismatched dump for one language)

Examples:
  wikibridge build --bridge la ja en
  wikibridge build --bridge en --policy outer de fr
  wikibridge merge --bridge la --output table.csv ja en de
`

// printUsage writes the CLI help text to the given writer.
func printUsage(w io.Writer) {
	fmt.Fprint(w, helpText+"\n")
	fmt.Fprintf(w, "Codes with built-in display names: %s\n", strings.Join(names.Known(), ", "))
}

// --- Configuration ----------------------------------------------------------

// config holds options shared by the "build" and "merge" subcommands.
type config struct {
	Languages    []string
	Bridge       string
	Policy       langtable.JoinPolicy
	Output       string
	CacheDir     string
	PairsDir     string
	Mirror       string
	SkipDownload bool
	TSV          bool
	Quiet        bool

	Names *names.Registry
}

// newFlagSet declares the flags shared by both subcommands.
func newFlagSet(name string) (*pflag.FlagSet, *config, *string, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	cfg := &config{}
	policy := fs.String("policy", "inner", `join policy: "inner" or "outer"`)
	namesFile := fs.String("names", "", "YAML file of extra language display names")
	fs.StringVar(&cfg.Bridge, "bridge", "la", "bridge language code")
	fs.StringVar(&cfg.Output, "output", "", "output file path")
	fs.StringVar(&cfg.CacheDir, "cache-dir", "dumps", "dump cache directory")
	fs.StringVar(&cfg.PairsDir, "pairs-dir", "pairs", "pair file directory")
	fs.StringVar(&cfg.Mirror, "mirror", fetch.DefaultMirror, "dump mirror base URL")
	fs.BoolVar(&cfg.SkipDownload, "skip-download", false, "use already-downloaded dumps")
	fs.BoolVar(&cfg.TSV, "tsv", false, "write tab-separated output")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "suppress progress output")

	return fs, cfg, policy, namesFile
}

// parseConfig finishes a flag set into a validated config.
func parseConfig(fs *pflag.FlagSet, cfg *config, policy, namesFile *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(os.Stdout)
			os.Exit(0)
		}
		return err
	}

	cfg.Languages = make([]string, 0, fs.NArg())
	for _, arg := range fs.Args() {
		cfg.Languages = append(cfg.Languages, strings.ToLower(strings.TrimSpace(arg)))
	}
	cfg.Bridge = strings.ToLower(strings.TrimSpace(cfg.Bridge))

	p, err := langtable.ParseJoinPolicy(*policy)
	if err != nil {
		return err
	}
	cfg.Policy = p

	// Reject bad language sets before any download starts.
	if err := langtable.ValidateConfig(cfg.Languages, cfg.Bridge, cfg.Policy); err != nil {
		return err
	}

	if *namesFile != "" {
		reg, err := names.Load(*namesFile)
		if err != nil {
			return err
		}
		cfg.Names = reg
	} else {
		cfg.Names = names.Builtin()
	}

	if cfg.Output == "" {
		ext := ".csv"
		if cfg.TSV {
			ext = ".tsv"
		}
		cfg.Output = strings.Join(cfg.Languages, "_") + "_" + cfg.Bridge + "_table" + ext
	}
	return nil
}

func (c *config) delimiter() rune {
	if c.TSV {
		return '\t'
	}
	return ','
}

// logf prints a progress/status line unless --quiet was given.
func (c *config) logf(format string, args ...any) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// --- build subcommand -------------------------------------------------------

func runBuild(ctx context.Context, cfg *config) error {
	cfg.logf("Languages: %s, bridge: %s (%s), policy: %s\n",
		cfg.Names.Describe(cfg.Languages), cfg.Names.Name(cfg.Bridge), cfg.Bridge, cfg.Policy)

	if !cfg.SkipDownload {
		if err := downloadDumps(ctx, cfg); err != nil {
			return err
		}
	} else {
		cfg.logf("Download skipped; using dumps in %s\n", cfg.CacheDir)
	}

	maps, err := extractAll(ctx, cfg)
	if err != nil {
		return err
	}
	return mergeAndWrite(cfg, maps)
}

// downloadDumps fetches langlinks and page dumps for every requested
// language, sequentially so progress lines stay readable and the mirror is
// not hammered. A failed download is a warning, not a stop: the language
// degrades to an empty map downstream.
func downloadDumps(ctx context.Context, cfg *config) error {
	for _, lang := range cfg.Languages {
		for _, table := range []string{"langlinks", "page"} {
			url := fetch.DumpURL(cfg.Mirror, lang, table)
			path := fetch.DumpPath(cfg.CacheDir, lang, table)

			var progress fetch.Progress
			if !cfg.Quiet {
				progress = func(written, total int64) {
					if total > 0 {
						fmt.Fprintf(os.Stderr, "\rDownloading %swiki %s: %d/%d bytes", lang, table, written, total)
					} else {
						fmt.Fprintf(os.Stderr, "\rDownloading %swiki %s: %d bytes", lang, table, written)
					}
				}
			}

			if err := fetch.Download(ctx, nil, url, path, progress); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				cfg.logf("\n")
				log.Printf("warning: download %s: %v (continuing, %s may come up empty)", url, err, lang)
				continue
			}
			cfg.logf("\rDownloaded %swiki %s%s\n", lang, table, strings.Repeat(" ", 30))
		}
	}
	return nil
}

// extractAll scans every language's dumps concurrently, writing pair files
// and building the in-memory language maps. Languages are independent, so
// the scans share nothing but the errgroup.
func extractAll(ctx context.Context, cfg *config) ([]*langtable.LanguageMap, error) {
	maps := make([]*langtable.LanguageMap, len(cfg.Languages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, lang := range cfg.Languages {
		i, lang := i, lang
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := extractLanguage(cfg, lang)
			if err != nil {
				return err
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return maps, nil
}

// extractLanguage runs the two-pass dump scan for one language. Missing
// dump files are not fatal: the language's map stays empty and the merge
// reports the gap.
func extractLanguage(cfg *config, lang string) (*langtable.LanguageMap, error) {
	m := langtable.NewLanguageMap(lang)

	llPath := fetch.DumpPath(cfg.CacheDir, lang, "langlinks")
	pgPath := fetch.DumpPath(cfg.CacheDir, lang, "page")

	ll, err := fetch.Open(llPath)
	if err != nil {
		log.Printf("warning: %s: %v (no data for %s)", llPath, err, lang)
		return m, nil
	}
	defer ll.Close()

	pg, err := fetch.Open(pgPath)
	if err != nil {
		log.Printf("warning: %s: %v (no data for %s)", pgPath, err, lang)
		return m, nil
	}
	defer pg.Close()

	pw, err := pairfile.Create(pairfile.Path(cfg.PairsDir, lang, cfg.Bridge))
	if err != nil {
		return nil, err
	}

	ts := time.Now()
	ex := &sqldump.Extractor{Bridge: cfg.Bridge}
	stats, err := ex.Extract(ll, pg, func(local, bridge string) error {
		if err := pw.Add(local, bridge); err != nil {
			return err
		}
		m.Add(local, bridge)
		return nil
	})
	if err != nil {
		pw.Close()
		return nil, fmt.Errorf("extract %s: %w", lang, err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("extract %s: %w", lang, err)
	}

	cfg.logf("Extracted %s (%s): %d pairs (%d linked pages, %d keys, %d conflicts, %.1fs)\n",
		cfg.Names.Name(lang), lang, stats.Pairs, stats.Linked, m.Len(), m.Conflicts,
		time.Since(ts).Seconds())
	return m, nil
}

// --- merge subcommand -------------------------------------------------------

func runMerge(cfg *config) error {
	cfg.logf("Languages: %s, bridge: %s (%s), policy: %s\n",
		cfg.Names.Describe(cfg.Languages), cfg.Names.Name(cfg.Bridge), cfg.Bridge, cfg.Policy)

	maps := make([]*langtable.LanguageMap, 0, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		m := langtable.NewLanguageMap(lang)
		path := pairfile.Path(cfg.PairsDir, lang, cfg.Bridge)

		n, err := pairfile.Read(path, func(local, bridge string) error {
			m.Add(local, bridge)
			return nil
		})
		if err != nil {
			log.Printf("warning: %s: %v (no data for %s)", path, err, lang)
		} else {
			cfg.logf("Loaded %s (%s): %d pairs, %d keys, %d conflicts\n",
				cfg.Names.Name(lang), lang, n, m.Len(), m.Conflicts)
		}
		maps = append(maps, m)
	}
	return mergeAndWrite(cfg, maps)
}

// --- shared merge + write ---------------------------------------------------

func mergeAndWrite(cfg *config, maps []*langtable.LanguageMap) error {
	table, stats, err := langtable.Merge(maps, cfg.Bridge, cfg.Policy)
	if stats != nil {
		printSummary(cfg, stats)
	}
	if err != nil {
		return err
	}

	if err := export.WriteFile(cfg.Output, table, cfg.delimiter()); err != nil {
		return fmt.Errorf("write %q: %w", cfg.Output, err)
	}
	cfg.logf("Wrote %s: %d rows, columns: %s\n",
		cfg.Output, len(table.Rows), strings.Join(table.Columns, ", "))
	return nil
}

// printSummary reports coverage and conflict diagnostics on stderr.
func printSummary(cfg *config, stats *langtable.Stats) {
	codes := make([]string, 0, len(stats.Keys))
	for code := range stats.Keys {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	cfg.logf("Coverage: %d candidate concepts, %d emitted\n", stats.Candidates, stats.Emitted)
	for _, code := range codes {
		cfg.logf("  %-3s %d keys, %d conflicts dropped\n", code, stats.Keys[code], stats.Conflicts[code])
	}
	for _, code := range stats.Empty {
		log.Printf("warning: no link data for %s (%s); check its dump files", cfg.Names.Name(code), code)
	}
}

// --- main -------------------------------------------------------------------

func run(args []string) error {
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch args[0] {
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return nil
	case "build":
		fs, cfg, policy, namesFile := newFlagSet("build")
		if err := parseConfig(fs, cfg, policy, namesFile, args[1:]); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return runBuild(ctx, cfg)
	case "merge":
		fs, cfg, policy, namesFile := newFlagSet("merge")
		if err := parseConfig(fs, cfg, policy, namesFile, args[1:]); err != nil {
			return err
		}
		return runMerge(cfg)
	default:
		log.Printf("Unknown subcommand %q\n\n", args[0])
		printUsage(os.Stderr)
		os.Exit(1)
		return nil
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("wikibridge: ")

	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, langtable.ErrNoCorrespondence) {
			log.Println(err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
