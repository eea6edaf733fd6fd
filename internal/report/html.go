package report

import (
	"html"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"abtest/domain/experiment"
)

// HTML renders the markdown report as a standalone HTML page.
func HTML(title string, analyses []experiment.MetricAnalysis) []byte {
	return MarkdownToHTML(title, Markdown(title, analyses))
}

// MarkdownToHTML converts markdown to a complete HTML document. Raw HTML in
// the markdown is dropped.
func MarkdownToHTML(title, md string) []byte {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage | mdhtml.SkipHTML | mdhtml.Safelink,
		Title: html.EscapeString(title),
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}
