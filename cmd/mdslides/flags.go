package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds flags that shape the rendered page.
type renderFlags struct {
	theme     string
	mode      string
	style     string
	assetPath string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	render   renderFlags
	addr     string
	debounce string
	open     bool
	openSet  bool
	noWatch  bool
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	common    commonFlags
	render    renderFlags
	output    string
	format    string
	title     string
	workers   int
	timeout   string
	minify    bool
	minifySet bool
}

// Export formats.
const (
	formatHTML = "html"
	formatPDF  = "pdf"
)

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addRenderFlags adds page rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.theme, "theme", "", "diagram theme: default, dark, forest, neutral")
	fs.StringVarP(&f.mode, "mode", "m", "", "display mode: slides, preview")
	fs.StringVar(&f.style, "style", "", "extra CSS: style name, file path or raw CSS")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (host:port)")
	fs.StringVarP(&f.debounce, "debounce", "d", "", "delay before re-rendering after an edit (e.g., 300ms)")
	fs.BoolVar(&f.open, "open", false, "open the page in the default browser")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not re-render when the file changes on disk")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.openSet = fs.Changed("open")

	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string) (*exportFlags, []string, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	f := &exportFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.format, "format", "f", formatHTML, "output format: html, pdf")
	fs.StringVar(&f.title, "title", "", "page title (\"\" = first H1)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF snapshot timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.minify, "minify", false, "minify the exported HTML")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printExportUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.minifySet = fs.Changed("minify")

	return f, fs.Args(), nil
}
