// Package pipeline implements the Markdown-to-page rendering stages.
//
// A render pass runs these stages in a fixed order:
//   - heading extraction, skipping fenced regions
//   - protection of block math, inline math and mermaid blocks behind
//     Private Use Area placeholders
//   - Markdown to HTML conversion via Goldmark
//   - anchor id injection on the converted headings
//   - placeholder restoration
//   - image reference rewriting through an AssetResolver
//
// Page assembly (templates with their style slot, outline navigation) and export
// minification live here too. Theme resolution, caching and the live session
// are handled by the root mdslides package and internal/live.
package pipeline
