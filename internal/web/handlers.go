package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/logging"
	"github.com/JonMunkholm/rreport/internal/web/templates"
)

// dashboardState carries what a handler wants shown on top of the
// session's own data.
type dashboardState struct {
	success string
	alert   *templates.Alert
}

// handleDashboard renders the console. Query parameters select the table
// view and page, and run a statistical test when "test" is present.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var st dashboardState
	if r.URL.Query().Get("analyzed") == "1" {
		st.success = "Analysis complete."
	}
	s.renderDashboard(w, r, st, http.StatusOK)
}

// renderDashboard builds the page from the session. Errors in optional
// sections are shown inline rather than failing the page.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, st dashboardState, status int) {
	sess := sessionFrom(r)
	data := templates.DashboardData{
		Year:        time.Now().Year(),
		Success:     st.success,
		Error:       st.alert,
		MaxUploadMB: s.cfg.Upload.MaxFileSize >> 20,
		Summary:     s.service.Snapshot(sess),
	}

	if data.Loaded() {
		s.fillDataView(r, &data)
		s.fillTests(r, &data)

		rendered, err := s.service.RenderReport(sess)
		if err != nil {
			logging.FromContext(r.Context()).Warn("report rendering failed", "error", err)
			if data.Error == nil {
				data.Error = alertFor(core.MapError(err))
			}
		}
		data.Report = rendered
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

func (s *Server) fillDataView(r *http.Request, data *templates.DashboardData) {
	sess := sessionFrom(r)
	data.View = templates.ViewPaged

	if r.URL.Query().Get("view") == templates.ViewFull {
		full, err := s.service.FullView(sess)
		if err == nil {
			data.View = templates.ViewFull
			data.Full = full
			return
		}
		data.Error = alertFor(core.MapError(err))
	}

	size, page, err := s.pageParams(r)
	if err == nil {
		data.Page, err = s.service.Page(sess, size, page)
	}
	if err != nil {
		if data.Error == nil {
			data.Error = alertFor(core.MapError(err))
		}
		// Fall back to the first page at the default size.
		data.Page, _ = s.service.Page(sess, s.cfg.Display.DefaultPageSize, 1)
	}
}

func (s *Server) fillTests(r *http.Request, data *templates.DashboardData) {
	q := r.URL.Query()
	name := q.Get("test")
	if name == "" {
		return
	}

	test, err := core.ParseTest(name)
	if err != nil {
		data.Tests.Error = alertFor(core.MapError(err))
		return
	}
	req := testRequestFromQuery(test, q)
	data.Tests.Request = req

	res, err := s.service.RunTest(r.Context(), sessionFrom(r), req)
	if err != nil {
		logging.FromContext(r.Context()).Info("test rejected", "test", name, "error", err)
		data.Tests.Error = alertFor(core.MapError(err))
		return
	}
	data.Tests.Result = res
	data.Tests.CSVURL = testCSVURL(req)
}

// handleAnalyze loads the uploaded file into the session and redirects
// back to the dashboard.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Analyze(ctx, sessionFrom(r), name, data); err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/?analyzed=1", http.StatusSeeOther)
}

// handleReset clears the session and redirects back to the dashboard.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset(r.Context(), sessionFrom(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleHealth reports liveness with basic load figures.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
		"analyses": s.service.LimiterStatus(),
		"formats":  dataset.SupportedExtensions,
	})
}
