// Package mdslides renders Markdown documents containing Mermaid diagrams and
// math into display pages: a slideshow with one diagram per slide, or a full
// preview with an outline.
//
// # Quick Start
//
// Create a renderer and render a snapshot of the document:
//
//	r, err := mdslides.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := r.Render(ctx, mdslides.Input{
//	    Markdown: "# Flow\n\n```mermaid\ngraph TD; A-->B\n```\n",
//	    Mode:     mdslides.ModePreview,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("flow.html", []byte(result.HTML), 0644)
//
// # Rendering Pipeline
//
// The stages run in a fixed order:
//
//  1. Line endings normalized, headings extracted with source line numbers
//  2. Block math, inline math and Mermaid blocks replaced by placeholders
//  3. Markdown to HTML conversion via Goldmark (GFM, syntax highlighting)
//  4. Anchor ids added to the first matching heading elements
//  5. Placeholders restored as diagram containers and math spans
//  6. Relative image references rewritten by the AssetResolver
//  7. Outline built, page template filled, styles injected
//
// Diagrams and math are drawn by Mermaid and KaTeX in the browser. The page
// marks document.body with data-rendered="true" once they are done, which is
// what ExportPDF waits for before printing.
//
// # Themes
//
// Themes map to Mermaid themes. ThemeDefault follows the ambient light or
// dark preference (see AmbientFunc and EnvAmbient).
//
// # Custom Assets
//
// Templates and styles can be overridden from a directory:
//
//	r, err := mdslides.NewRenderer(mdslides.WithAssetPath("/path/to/assets"))
//
// The directory should contain styles/{name}.css and templates/{name}.html.
// Missing files fall back to the embedded defaults.
//
// # Export
//
// Exporter writes standalone HTML, optionally minified, and PDF snapshots
// through headless Chrome. Use ExporterPool for parallel exports:
//
//	pool := mdslides.NewExporterPool(mdslides.ResolvePoolSize(0), func() *mdslides.Exporter {
//	    return mdslides.NewExporter(r)
//	})
//	defer pool.Close()
//
// # Live Display
//
// The cmd/mdslides serve command keeps a browser page in sync with a file on
// disk. Edits are debounced and pushed over a WebSocket.
package mdslides
