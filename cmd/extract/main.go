// Command extract runs the page-data extraction pipeline over saved HTML
// pages and prints the job records it finds.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"jobsync-engine/internal/config"
	"jobsync-engine/internal/domain"
	"jobsync-engine/internal/extract"
	"jobsync-engine/internal/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

type options struct {
	jobID     string
	workers   int
	format    string
	selectors string
	cfgPath   string
	level     string
	harvest   bool
}

// fileResult is one page's outcome, in input order.
type fileResult struct {
	Path    string             `json:"path"`
	Method  domain.Method      `json:"method,omitempty"`
	Records []domain.JobRecord `json:"records"`
	Error   string             `json:"error,omitempty"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.jobID, "job-id", "", "only extract this job id")
	fs.IntVar(&o.workers, "workers", runtime.NumCPU(), "pages processed concurrently")
	fs.StringVar(&o.format, "format", "table", "output format: table or json")
	fs.StringVar(&o.selectors, "selectors", "", "selectors.yml overlay")
	fs.StringVar(&o.cfgPath, "config", "", "engine config.yml to take extraction rules from")
	fs.StringVar(&o.level, "log-level", "warn", "log level")
	fs.BoolVar(&o.harvest, "harvest", false, "treat pages as result lists and collect every job on them")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: extract [flags] <page.html|dir>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no input pages")
	}
	if o.format != "table" && o.format != "json" {
		return fmt.Errorf("unknown format %q", o.format)
	}

	lg := logger.New(logger.Options{Level: o.level}, stderr)

	rules, err := loadRules(o)
	if err != nil {
		return err
	}
	ex := extract.New(rules, lg.Slog())

	paths, err := collect(fs.Args())
	if err != nil {
		return err
	}

	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.workers, 1))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = process(ex, p, o, lg.Slog())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if o.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	writeTable(stdout, results)
	return nil
}

func loadRules(o options) (extract.Rules, error) {
	cfg := config.Defaults()
	if o.cfgPath != "" {
		c, err := config.Load(o.cfgPath)
		if err != nil {
			return extract.Rules{}, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if o.selectors != "" {
		if err := config.OverlaySelectors(&cfg, o.selectors); err != nil {
			return extract.Rules{}, fmt.Errorf("load selectors: %w", err)
		}
	}
	return cfg.Extraction.Rules(), nil
}

// collect expands directories into their .html files, sorted.
func collect(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		st, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, a)
			continue
		}
		var found []string
		err = filepath.WalkDir(a, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			ext := strings.ToLower(filepath.Ext(p))
			if !d.IsDir() && (ext == ".html" || ext == ".htm") {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

func process(ex *extract.Extractor, path string, o options, log *slog.Logger) fileResult {
	fr := fileResult{Path: path, Records: []domain.JobRecord{}}
	f, err := os.Open(path)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	defer f.Close()

	if o.harvest {
		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			fr.Error = err.Error()
			return fr
		}
		fr.Records = ex.Harvest(doc)
		fr.Method = domain.MethodCard
		return fr
	}

	res, err := ex.ExtractHTML(f, o.jobID)
	if err != nil {
		log.Debug("page yielded nothing", "path", path, "err", err)
		fr.Error = err.Error()
		return fr
	}
	fr.Method = res.Method
	fr.Records = res.Records
	return fr
}
