// Package report renders analysis results as markdown and HTML.
package report

import (
	"fmt"
	"html"
	"strings"

	"abtest/domain/experiment"
)

// Markdown renders one section per metric, in input order.
func Markdown(title string, analyses []experiment.MetricAnalysis) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", escape(title))
	}
	for i := range analyses {
		writeMetric(&b, &analyses[i])
	}
	return b.String()
}

func writeMetric(b *strings.Builder, a *experiment.MetricAnalysis) {
	fmt.Fprintf(b, "## %s\n\n", escape(a.Metric))

	b.WriteString("| Variant | Trials | Successes | Rate |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, v := range a.Variants {
		fmt.Fprintf(b, "| %s | %d | %d | %s |\n", escape(v.Name), v.Trials, v.Successes, percent(v.Rate()))
	}
	b.WriteString("\n")

	switch a.Kind {
	case experiment.KindAB:
		if a.Comparison != nil {
			writeComparisons(b, []experiment.Comparison{*a.Comparison})
			writeVerdict(b, a.Comparison)
		}
	case experiment.KindABN:
		if c := a.Contingency; c != nil {
			fmt.Fprintf(b, "Chi-square test across all variants: χ² = %.3f, df = %d, p = %s, Cramér's V = %.3f. %s\n\n",
				c.ChiSquare, c.DegreesOfFreedom, pValue(c.PValue), c.CramersV, significance(c.Significant))
		}
		b.WriteString("### Against control\n\n")
		writeComparisons(b, a.ControlComparisons)
		b.WriteString("### All pairs\n\n")
		writeComparisons(b, a.PairwiseComparisons)
	}

	fmt.Fprintf(b, "_Seed: %d_\n\n", a.Seed)
}

func writeComparisons(b *strings.Builder, comparisons []experiment.Comparison) {
	b.WriteString("| Comparison | Lift | 95% lift interval | z | p-value | P(B beats A) | Significant |\n")
	b.WriteString("|---|---:|---|---:|---:|---:|:---:|\n")
	for _, c := range comparisons {
		mark := ""
		if c.Significant {
			mark = "yes"
		}
		fmt.Fprintf(b, "| %s vs %s | %+.2f%% | [%.2f%%, %.2f%%] | %.3f | %s | %s | %s |\n",
			escape(c.B), escape(c.A), c.Lift, c.LiftInterval.Lower, c.LiftInterval.Upper,
			c.ZScore, pValue(c.PValue), percent(c.ProbabilityToBeat), mark)
	}
	b.WriteString("\n")
}

// writeVerdict states significance and direction for a two-variant test.
func writeVerdict(b *strings.Builder, c *experiment.Comparison) {
	a, bn := escape(c.A), escape(c.B)
	fmt.Fprintf(b, "- %s\n", significance(c.Significant))
	switch {
	case c.Lift > 0:
		fmt.Fprintf(b, "- %s shows an improvement of %.2f%% over %s.\n", bn, c.Lift, a)
	case c.Lift < 0:
		fmt.Fprintf(b, "- %s shows a decline of %.2f%% against %s.\n", bn, -c.Lift, a)
	default:
		fmt.Fprintf(b, "- %s and %s convert at the same observed rate.\n", bn, a)
	}
	fmt.Fprintf(b, "- Probability that %s beats %s: %s.\n\n", bn, a, percent(c.ProbabilityToBeat))
}

func significance(significant bool) string {
	if significant {
		return fmt.Sprintf("The difference is statistically significant (p < %.2f).", experiment.SignificanceLevel)
	}
	return fmt.Sprintf("The difference is not statistically significant (p ≥ %.2f).", experiment.SignificanceLevel)
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func pValue(p float64) string {
	if p < 0.0001 {
		return "< 0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"(", `\(`, ")", `\)`, "!", `\!`, "|", `\|`, "~", `\~`,
)

// escape makes a user-supplied name inert: HTML is entity-encoded and
// markdown punctuation is backslash-escaped, so names render as plain text.
func escape(s string) string {
	return markdownEscaper.Replace(html.EscapeString(s))
}
