package report

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Text renders the report as plain text, the format of the text download.
func (r *Report) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n", r.Cols)
	if r.DuplicateRows > 0 {
		fmt.Fprintf(&b, "Duplicate rows: %d\n", r.DuplicateRows)
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Columns {
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%, unique %d)",
			oneLine(c.Name), c.Kind, c.NonNull, 100*c.MissingRatio(), c.Unique)
		if n := c.Numeric; n != nil {
			fmt.Fprintf(&b, ": min %s, max %s, mean %s, median %s, std %s",
				num(n.Min), num(n.Max), num(n.Mean), num(n.Median), num(n.Std))
		}
		if len(c.TopValues) > 0 {
			b.WriteString(": top ")
			for i, vc := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", oneLine(vc.Value), vc.Count)
			}
		}
		b.WriteString("\n")
	}

	if r.Corr != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		for i := range r.Corr.Columns {
			for j := i + 1; j < len(r.Corr.Columns); j++ {
				fmt.Fprintf(&b, "- %s ~ %s: %s\n", r.Corr.Columns[i], r.Corr.Columns[j], num(r.Corr.Values[i][j]))
			}
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString(strings.Join(r.Header, " | "))
		b.WriteString("\n")
		for _, row := range r.Samples {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = oneLine(v)
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// String implements fmt.Stringer with the plain-text rendering.
func (r *Report) String() string {
	return r.Text()
}

// Markdown renders the report as a Markdown document with tables.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# EDA report: %s\n\n", cell(r.Name))
	fmt.Fprintf(&b, "**Rows:** %d, **Columns:** %d", r.Rows, r.Cols)
	if r.DuplicateRows > 0 {
		fmt.Fprintf(&b, ", **Duplicate rows:** %d", r.DuplicateRows)
	}
	b.WriteString("\n\n")

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", cell(w))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Variables\n\n")
	b.WriteString("| Column | Kind | Non-null | Missing | Missing % | Unique |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|\n")
	for _, c := range r.Columns {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %.1f | %d |\n",
			cell(c.Name), c.Kind, c.NonNull, c.Missing, 100*c.MissingRatio(), c.Unique)
	}
	b.WriteString("\n")

	var numeric []ColumnSummary
	var categorical []ColumnSummary
	for _, c := range r.Columns {
		if c.Numeric != nil {
			numeric = append(numeric, c)
		}
		if len(c.TopValues) > 0 {
			categorical = append(categorical, c)
		}
	}

	if len(numeric) > 0 {
		b.WriteString("## Numeric columns\n\n")
		b.WriteString("| Column | Mean | Std | Min | 25% | 50% | 75% | Max | Skew |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, c := range numeric {
			n := c.Numeric
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				cell(c.Name), num(n.Mean), num(n.Std), num(n.Min), num(n.Q25),
				num(n.Median), num(n.Q75), num(n.Max), num(n.Skewness))
		}
		b.WriteString("\n")
	}

	if len(categorical) > 0 {
		b.WriteString("## Categorical columns\n\n")
		for _, c := range categorical {
			fmt.Fprintf(&b, "### %s\n\n", cell(c.Name))
			b.WriteString("| Value | Count | Share |\n|---|---:|---:|\n")
			for _, vc := range c.TopValues {
				share := 0.0
				if c.NonNull > 0 {
					share = 100 * float64(vc.Count) / float64(c.NonNull)
				}
				fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", cell(vc.Value), vc.Count, share)
			}
			b.WriteString("\n")
		}
	}

	if r.Corr != nil {
		b.WriteString("## Correlations (Pearson)\n\n|   |")
		for _, c := range r.Corr.Columns {
			fmt.Fprintf(&b, " %s |", cell(c))
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(r.Corr.Columns)))
		b.WriteString("\n")
		for i, c := range r.Corr.Columns {
			fmt.Fprintf(&b, "| %s |", cell(c))
			for _, v := range r.Corr.Values[i] {
				fmt.Fprintf(&b, " %s |", num(v))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.Samples) > 0 && len(r.Header) > 0 {
		b.WriteString("## Sample rows\n\n|")
		for _, h := range r.Header {
			fmt.Fprintf(&b, " %s |", cell(h))
		}
		b.WriteString("\n|")
		b.WriteString(strings.Repeat("---|", len(r.Header)))
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("|")
			for _, v := range row {
				fmt.Fprintf(&b, " %s |", cell(v))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

const htmlStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin:0 0 1.5rem}
th,td{border:1px solid #ccc;padding:.3rem .6rem;font-size:.9rem}
th{background:#f3f3f3}
h1{font-size:1.6rem}h2{font-size:1.25rem;margin-top:2rem}`

// htmlFlags renders cell text literally: no smart punctuation, no raw HTML
// and no links to untrusted schemes.
const htmlFlags = mdhtml.SkipHTML | mdhtml.Safelink

// HTML renders the report as a standalone HTML document.
func (r *Report) HTML() (string, error) {
	if r == nil || r.table == nil {
		return "", ErrNoTable
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})
	body := markdown.ToHTML([]byte(r.Markdown()), p, renderer)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>EDA report: %s</title>\n", html.EscapeString(r.Name))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n</head>\n<body>\n", htmlStyle)
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// cellEscaper backslash-escapes every character the parser treats as
// inline syntax, including the emphasis, link, superscript and math markers.
var cellEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "`", "\\`", "*", `\*`, "_", `\_`,
	"{", `\{`, "}", `\}`, "[", `\[`, "]", `\]`, "!", `\!`,
	"&", `\&`, "<", `\<`, ">", `\>`, "~", `\~`, "^", `\^`, "$", `\$`,
)

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	return cellEscaper.Replace(oneLine(s))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", v)
}
