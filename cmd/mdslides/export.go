package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdslides"
	"github.com/alnah/go-mdslides/internal/config"
	"github.com/alnah/go-mdslides/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have a markdown extension (.md, .markdown, .mdown, .mkd)")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidFormat      = errors.New("invalid export format")
	ErrInvalidDuration    = errors.New("invalid duration")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// errUsageOrHelp keeps --help distinguishable from flag errors.
func errUsageOrHelp(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return flag.ErrHelp
	}
	return ErrUsage
}

// exportJob is a single file to export.
type exportJob struct {
	InputPath  string
	OutputPath string
}

// exportResult holds the outcome of a single export.
type exportResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// exportParams groups settings shared by every file of a batch.
type exportParams struct {
	format string
	theme  mdslides.Theme
	mode   mdslides.Mode
	title  string
}

// runExport exports markdown files to standalone HTML or PDF.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseExportFlags(args)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsageOrHelp(err), err)
	}
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	format := strings.ToLower(f.format)
	if format != formatHTML && format != formatPDF {
		return fmt.Errorf("%w: %q (must be html or pdf)", ErrInvalidFormat, f.format)
	}

	log := newLogger(env.Stderr, f.common.quiet, f.common.verbose)
	warnUnknownEnvVars(env.Stderr)
	setMaxProcs(log)

	envCfg := loadEnvConfig()
	cfg, _, err := loadConfig(f.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeExportFlags(f, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	theme, mode, err := displaySettings(cfg)
	if err != nil {
		return err
	}

	if len(positional) == 0 {
		return ErrNoInput
	}
	jobs, err := discoverInputs(positional, f.output, "."+format)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, strings.Join(positional, ", "))
	}

	renderer, err := newRenderer(cfg, log)
	if err != nil {
		return err
	}

	workers := f.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := mdslides.ResolvePoolSize(workers)
	if format == formatHTML {
		// No browser involved; rendering is cheap.
		poolSize = min(poolSize, len(jobs))
	}
	log.Debug("exporting", "files", len(jobs), "format", format, "workers", poolSize)

	pool := mdslides.NewExporterPool(poolSize, func() *mdslides.Exporter {
		return mdslides.NewExporter(renderer,
			mdslides.WithTimeout(cfg.ExportTimeout()),
			mdslides.WithMinify(cfg.Export.Minify),
		)
	})
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing exporters", "error", err)
		}
	}()

	params := &exportParams{format: format, theme: theme, mode: mode, title: f.title}
	results := exportBatch(ctx, pool, jobs, params)

	failed := printResults(results, f.common.quiet, f.common.verbose, env)
	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Err
	}
	return fmt.Errorf("%d export(s) failed", failed)
}

// mergeExportFlags merges export flags into config. CLI values win.
func mergeExportFlags(f *exportFlags, cfg *config.Config) error {
	mergeRenderFlags(f.render, cfg)
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q", ErrInvalidDuration, f.timeout)
		}
		cfg.Export.Timeout = f.timeout
	}
	if f.minifySet {
		cfg.Export.Minify = f.minify
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdslides.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdslides.MaxPoolSize)
	}
	return nil
}

// discoverInputs expands files and directories into export jobs.
// An output ending in ext names the single output file; any other output is
// a directory, mirroring the layout of directory inputs.
func discoverInputs(paths []string, output, ext string) ([]exportJob, error) {
	var jobs []exportJob
	outFile := strings.EqualFold(filepath.Ext(output), ext)

	for _, input := range paths {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		}

		if !info.IsDir() {
			if !fileutil.IsMarkdown(input) {
				return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(input))
			}
			out := output
			if !outFile {
				out = fileutil.OutputPath(input, output, ext)
			}
			jobs = append(jobs, exportJob{InputPath: input, OutputPath: out})
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() || !fileutil.IsMarkdown(path) {
				return nil
			}
			outDir := ""
			if output != "" && !outFile {
				rel, relErr := filepath.Rel(input, filepath.Dir(path))
				if relErr != nil {
					rel = "."
				}
				outDir = filepath.Join(output, rel)
			}
			jobs = append(jobs, exportJob{InputPath: path, OutputPath: fileutil.OutputPath(path, outDir, ext)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if outFile && len(jobs) > 1 {
		return nil, fmt.Errorf("%w: --output %q names a file but %d inputs were found", ErrUsage, output, len(jobs))
	}
	return jobs, nil
}

// exportBatch processes jobs concurrently using the exporter pool.
func exportBatch(ctx context.Context, pool *mdslides.ExporterPool, jobs []exportJob, params *exportParams) []exportResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]exportResult, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp := pool.Acquire()
			defer pool.Release(exp)

			for idx := range queue {
				if err := ctx.Err(); err != nil {
					results[idx] = exportResult{InputPath: jobs[idx].InputPath, Err: err}
					continue
				}
				results[idx] = exportFile(ctx, exp, jobs[idx], params)
			}
		}()
	}

	wg.Wait()
	return results
}

// exportFile renders and writes one file.
func exportFile(ctx context.Context, exp *mdslides.Exporter, job exportJob, params *exportParams) exportResult {
	start := time.Now()
	result := exportResult{InputPath: job.InputPath, OutputPath: job.OutputPath}
	fail := func(err error) exportResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(job.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReadMarkdown, err))
	}

	input := mdslides.Input{
		Markdown: string(content),
		Theme:    params.theme,
		Mode:     params.mode,
		Title:    params.title,
	}
	// Relative image references keep working when the output sits next to
	// the source; elsewhere they become file:// URLs.
	inDir, _ := filepath.Abs(filepath.Dir(job.InputPath))
	outDir, _ := filepath.Abs(filepath.Dir(job.OutputPath))
	if params.format == formatPDF || inDir != outDir {
		input.Assets = mdslides.FileAssets(inDir)
	}

	var data []byte
	switch params.format {
	case formatPDF:
		data, err = exp.ExportPDF(ctx, input)
	default:
		var res *mdslides.Result
		if res, err = exp.ExportHTML(ctx, input); err == nil {
			data = []byte(res.HTML)
		}
	}
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err))
	}
	if err := fileutil.WriteFileAtomic(job.OutputPath, data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	result.Duration = time.Since(start)
	return result
}

// printResults outputs export results and returns the number of failures.
// A lone failure is left to the caller, which reports it as the command error.
func printResults(results []exportResult, quiet, verbose bool, env *Environment) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if len(results) == 1 {
				continue
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
