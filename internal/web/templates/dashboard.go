package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/report"
	"github.com/JonMunkholm/rreport/internal/stats"
	"github.com/a-h/templ"
)

// Table views.
const (
	ViewPaged = "paged"
	ViewFull  = "full"
)

// Alert is a user-facing error message.
type Alert struct {
	Message string
	Action  string
	Code    string
	Detail  string
}

// TestPanel carries the state of the statistical test forms.
type TestPanel struct {
	Request core.TestRequest
	Result  *stats.Result
	Error   *Alert
	// CSVURL downloads Result as CSV.
	CSVURL string
}

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	Year        int
	Success     string
	Error       *Alert
	MaxUploadMB int64

	// The fields below are only set once a dataset is loaded.
	Summary *core.Summary
	View    string
	Page    *dataset.Page
	Full    *core.FullView
	Report  *report.Rendered
	Tests   TestPanel
}

// Loaded reports whether a dataset is shown.
func (d *DashboardData) Loaded() bool {
	return d.Summary != nil
}

// Dashboard renders the full console page.
func Dashboard(d DashboardData) templ.Component {
	return Layout("rreport", d.Year, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if d.Success != "" {
			h.err = SuccessBanner(d.Success).Render(ctx, w)
		}
		if d.Error != nil && h.err == nil {
			h.err = ErrorAlert(d.Error.Message, d.Error.Action, d.Error.Code).Render(ctx, w)
		}
		uploadForm(h, &d)
		if !d.Loaded() {
			h.raw(`<section class="card empty"><p>Upload a CSV, Excel or JSON file to start exploring.</p></section>`)
			return h.err
		}

		h.raw(`<div class="toolbar">`)
		h.raw(`<button type="button" class="btn" data-export="png">Export PNG</button>`)
		h.raw(`<button type="button" class="btn" data-export="pdf">Export PDF</button>`)
		h.raw(`<a class="btn" href="/api/data/export">Download data (CSV)</a></div>`)

		h.raw(`<div id="printable_area">`)
		summarySection(h, d.Summary)
		dataSection(h, &d)
		reportSection(h, d.Report)
		h.raw(`</div>`)
		testsSection(h, &d)
		return h.err
	}))
}

func uploadForm(h *htmlWriter, d *DashboardData) {
	h.raw(`<section class="card upload"><form method="post" action="/analyze" enctype="multipart/form-data">`)
	h.raw(`<label for="file">Data file</label>`)
	h.raw(`<input type="file" id="file" name="file" accept=".csv,.xls,.xlsx,.json" required>`)
	h.raw(`<button type="submit" class="btn btn-primary">Analyze</button>`)
	if d.MaxUploadMB > 0 {
		h.raw(`<small>Up to `, strconv.FormatInt(d.MaxUploadMB, 10), ` MB</small>`)
	}
	h.raw(`</form>`)
	if d.Loaded() {
		h.raw(`<form method="post" action="/reset" class="reset-form"><button type="submit" class="btn btn-danger">Reset</button></form>`)
	}
	h.raw(`</section>`)
}

func summarySection(h *htmlWriter, s *core.Summary) {
	h.raw(`<section class="card"><h2>`)
	h.text(s.Name)
	h.raw(`</h2><p class="dims">`)
	h.int(s.Rows)
	h.raw(` rows &times; `)
	h.int(s.Cols)
	h.raw(` columns</p>`)
	if len(s.Warnings) > 0 {
		h.raw(`<ul class="warnings">`)
		for _, warn := range s.Warnings {
			h.raw(`<li>`)
			h.text(warn)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	}
	h.raw(`</section>`)
}

func dataSection(h *htmlWriter, d *DashboardData) {
	h.raw(`<section class="card"><nav class="tabs">`)
	tab(h, "Paginated view", ViewPaged, d.View != ViewFull, d.Page)
	tab(h, "Full view", ViewFull, d.View == ViewFull, d.Page)
	h.raw(`</nav>`)

	if d.View == ViewFull && d.Full != nil {
		h.raw(`<p class="caption">Showing every row. Large files may take a while to display.`)
		if d.Full.Truncated {
			h.raw(` Only the first `)
			h.int(len(d.Full.Rows))
			h.raw(` of `)
			h.int(d.Full.TotalRows)
			h.raw(` rows are displayed.`)
		}
		h.raw(`</p>`)
		dataTable(h, d.Full.Columns, d.Full.Rows, 0)
	} else if p := d.Page; p != nil {
		h.raw(`<p class="caption">Rows `)
		h.int(p.Start())
		h.raw(` to `)
		h.int(p.End())
		h.raw(` of `)
		h.int(p.TotalRows)
		h.raw(`</p>`)
		dataTable(h, p.Columns, p.Rows, p.StartIndex)
		pagination(h, p)
	}
	h.raw(`</section>`)
}

func tab(h *htmlWriter, label, view string, active bool, p *dataset.Page) {
	q := url.Values{"view": {view}}
	if p != nil {
		q.Set("page_size", strconv.Itoa(p.PageSize))
		q.Set("page", strconv.Itoa(p.PageNumber))
	}
	h.raw(`<a`)
	h.attr("href", dashboardURL(q))
	if active {
		h.raw(` class="active"`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</a>`)
}

func dataTable(h *htmlWriter, columns []string, rows [][]string, start int) {
	h.raw(`<div class="table-wrap"><table class="data"><thead><tr><th></th>`)
	for _, c := range columns {
		h.raw(`<th>`)
		h.text(c)
		h.raw(`</th>`)
	}
	h.raw(`</tr></thead><tbody>`)
	for i, row := range rows {
		h.raw(`<tr><th>`)
		h.int(start + i)
		h.raw(`</th>`)
		for _, cell := range row {
			h.raw(`<td>`)
			h.text(cell)
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table></div>`)
}

func pagination(h *htmlWriter, p *dataset.Page) {
	link := func(label string, page int, enabled bool) {
		if !enabled {
			h.raw(`<span class="disabled">`)
			h.text(label)
			h.raw(`</span>`)
			return
		}
		q := url.Values{
			"view":      {ViewPaged},
			"page_size": {strconv.Itoa(p.PageSize)},
			"page":      {strconv.Itoa(page)},
		}
		h.raw(`<a`)
		h.attr("href", dashboardURL(q))
		h.raw(`>`)
		h.text(label)
		h.raw(`</a>`)
	}

	h.raw(`<div class="pagination">`)
	link("Previous", p.PageNumber-1, p.HasPrev())
	h.raw(`<span>Page `)
	h.int(p.PageNumber)
	h.raw(` of `)
	h.int(p.TotalPages)
	h.raw(`</span>`)
	link("Next", p.PageNumber+1, p.HasNext())

	h.raw(`<form method="get" action="/" class="page-form"><input type="hidden" name="view" value="paged">`)
	h.raw(`<label>Rows per page <input type="number" name="page_size"`)
	h.attr("min", strconv.Itoa(dataset.MinPageSize))
	h.attr("max", strconv.Itoa(dataset.MaxPageSize))
	h.attr("value", strconv.Itoa(p.PageSize))
	h.raw(`></label><label>Page <input type="number" name="page" min="1"`)
	h.attr("max", strconv.Itoa(p.TotalPages))
	h.attr("value", strconv.Itoa(p.PageNumber))
	h.raw(`></label><button type="submit" class="btn">Go</button></form></div>`)
}

func reportSection(h *htmlWriter, r *report.Rendered) {
	h.raw(`<section class="card report"><h2>Report</h2><div class="toolbar">`)
	h.raw(`<a class="btn" href="/api/report/html">Download HTML</a>`)
	h.raw(`<a class="btn" href="/api/report/text">Download text</a></div>`)
	if r == nil {
		h.raw(`</section>`)
		return
	}
	if r.Warning != "" {
		h.raw(`<p class="caption">`)
		h.text(r.Warning)
		h.raw(`</p>`)
	}
	if r.Format == report.FormatHTML {
		h.raw(`<iframe class="report-frame" title="EDA report"`)
		h.attr("srcdoc", r.Content)
		h.raw(`></iframe>`)
	} else {
		h.raw(`<pre class="report-text">`)
		h.text(r.Content)
		h.raw(`</pre>`)
	}
	h.raw(`</section>`)
}

func testsSection(h *htmlWriter, d *DashboardData) {
	s := d.Summary
	req := d.Tests.Request

	h.raw(`<section class="card tests"><h2>Statistical tests</h2><div class="test-grid">`)

	testForm(h, stats.TestChiSquare, "Independence of two categorical variables.", func() {
		selectField(h, stats.TestChiSquare, "var1", "Variable 1", columnNames(s), req.Var1)
		selectField(h, stats.TestChiSquare, "var2", "Variable 2", columnNames(s), req.Var2)
	})
	testForm(h, stats.TestKS, "Compare a numeric column with a fitted normal distribution.", func() {
		selectField(h, stats.TestKS, "column", "Column", s.NumericColumns, req.Column)
		h.raw(`<input type="hidden" name="dist" value="norm">`)
	})
	testForm(h, stats.TestMannWhitney, "Compare a numeric column between two groups.", func() {
		selectField(h, stats.TestMannWhitney, "column", "Values", s.NumericColumns, req.Column)
		selectField(h, stats.TestMannWhitney, "group", "Group", columnNames(s), req.Group)
	})
	testForm(h, stats.TestShapiroWilk, "Test a numeric column for normality.", func() {
		selectField(h, stats.TestShapiroWilk, "column", "Column", s.NumericColumns, req.Column)
		h.raw(`<input type="hidden" name="method" value="shapiro">`)
	})
	h.raw(`</div>`)

	if e := d.Tests.Error; e != nil {
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(e.Message)
		h.raw(`</strong>`)
		if e.Detail != "" {
			h.raw(` <span>`)
			h.text(e.Detail)
			h.raw(`</span>`)
		}
		h.raw(` <code>`)
		h.text(e.Code)
		h.raw(`</code></div>`)
	}
	if res := d.Tests.Result; res != nil {
		testResult(h, res, d.Tests.CSVURL)
	}
	h.raw(`</section>`)
}

func testForm(h *htmlWriter, test stats.Test, blurb string, fields func()) {
	h.raw(`<form method="get" action="/" class="test-form"><h3>`)
	h.text(test.Title())
	h.raw(`</h3><p>`)
	h.text(blurb)
	h.raw(`</p>`)
	h.raw(`<input type="hidden" name="test"`)
	h.attr("value", string(test))
	h.raw(`>`)
	fields()
	h.raw(`<button type="submit" class="btn btn-primary">Run</button></form>`)
}

func selectField(h *htmlWriter, test stats.Test, name, label string, options []string, selected string) {
	id := string(test) + "-" + name
	h.raw(`<label`)
	h.attr("for", id)
	h.raw(`>`)
	h.text(label)
	h.raw(`</label><select`)
	h.attr("id", id)
	h.attr("name", name)
	h.raw(` required>`)
	for _, opt := range options {
		h.raw(`<option`)
		h.attr("value", opt)
		if opt == selected {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(opt)
		h.raw(`</option>`)
	}
	h.raw(`</select>`)
}

func testResult(h *htmlWriter, res *stats.Result, csvURL string) {
	h.raw(`<div class="test-result"><h3>`)
	h.text(res.Test.Title())
	h.raw(`</h3><table class="data"><tbody>`)
	for _, f := range res.Fields {
		h.raw(`<tr><th>`)
		h.text(f.Label)
		h.raw(`</th><td>`)
		h.text(stats.FormatValue(f.Value))
		h.raw(`</td></tr>`)
	}
	h.raw(`</tbody></table>`)
	if csvURL != "" {
		h.raw(`<a class="btn"`)
		h.attr("href", csvURL)
		h.raw(`>Download `)
		h.text(res.ExportName())
		h.raw(`</a>`)
	}
	h.raw(`</div>`)
}

func columnNames(s *core.Summary) []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
