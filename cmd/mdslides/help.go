package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdslides <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Show a markdown file live in the browser")
	fmt.Fprintln(w, "  export     Export markdown files to HTML or PDF")
	fmt.Fprintln(w, "  config     Print the effective configuration as YAML")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdslides help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdslides serve [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve a live page that follows the document. Without a file, the page")
	fmt.Fprintln(w, "waits for an editor to push one to POST /api/open.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:7331)")
	fmt.Fprintln(w, "  -d, --debounce <dur>      Delay before re-rendering (default 300ms)")
	fmt.Fprintln(w, "      --open                Open the page in the default browser")
	fmt.Fprintln(w, "      --no-watch            Ignore changes on disk")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdslides export <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export markdown files or directories to standalone HTML or PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -f, --format <s>          Format: html, pdf (default html)")
	fmt.Fprintln(w, "      --title <s>           Page title (\"\" = first H1)")
	fmt.Fprintln(w, "      --minify              Minify exported HTML")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       PDF snapshot timeout (default 30s)")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
}

func printRenderFlags(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --theme <s>           Theme: default, dark, forest, neutral")
	fmt.Fprintln(w, "  -m, --mode <s>            Mode: slides, preview")
	fmt.Fprintln(w, "      --style <s>           Extra CSS: name, file path or raw CSS")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles and templates")
	fmt.Fprintln(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDSLIDES_CONFIG, MDSLIDES_THEME, MDSLIDES_MODE, MDSLIDES_ADDR,")
	fmt.Fprintln(w, "  MDSLIDES_DEBOUNCE, MDSLIDES_STYLE, MDSLIDES_ASSET_PATH,")
	fmt.Fprintln(w, "  MDSLIDES_TIMEOUT, MDSLIDES_WORKERS (also read from .env)")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdslides config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration serve and export would use, as YAML.")
	fmt.Fprintln(w, "Precedence: flags > MDSLIDES_* environment > config file > defaults.")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdslides version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdslides help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
