// Package hints turns common failures into one-line suggestions.
// Every hint is rendered as "\n  hint: <text>" so it can be appended to an
// error message as is.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdslides/internal/fileutil"
)

// IsInContainer reports whether the process runs inside a container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI systems we know to need a sandbox-less Chrome.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect suggests the rod variables relevant to where we run.
// getenv is usually os.Getenv.
func ForBrowserConnect(getenv func(string) string) string {
	inCI := false
	for _, v := range ciVars {
		if getenv(v) != "" {
			inCI = true
			break
		}
	}

	var parts []string
	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use a specific Chrome")
	}
	return format(strings.Join(parts, "; "))
}

// ForTimeout suggests a longer export timeout.
func ForTimeout() string {
	return format("decks with many diagrams render slower; raise --timeout")
}

// ForConfigNotFound suggests --config, or creating the user-level file
// among the searched locations.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/mdslides.yaml"
	for _, p := range searched {
		if filepath.Base(filepath.Dir(p)) == "go-mdslides" {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory is shown when an export cannot be written.
func ForOutputDirectory() string {
	return format("check that the output directory exists and is writable")
}

// ForStyleNotFound lists the built-in styles.
func ForStyleNotFound(available []string) string {
	return listHint("built-in styles: ", available)
}

// ForPortInUse is shown when the preview server cannot bind addr.
func ForPortInUse(addr string) string {
	return format("another process is listening on " + addr + "; use --addr 127.0.0.1:0 to pick a free port")
}

// ForUnknownTheme lists the accepted themes.
func ForUnknownTheme(themes []string) string {
	return listHint("valid themes: ", themes)
}

// ForUnknownMode lists the accepted display modes.
func ForUnknownMode(modes []string) string {
	return listHint("valid modes: ", modes)
}

// ForEmptyDocument explains what export expects from the input.
func ForEmptyDocument() string {
	return format("the file has no content; slides mode also needs at least one ```mermaid or ::: mermaid block")
}

func listHint(prefix string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return format(prefix + strings.Join(values, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
