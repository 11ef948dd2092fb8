package web

import (
	"bytes"
	"net/http"

	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/go-chi/chi/v5"
)

// Report download names.
const (
	reportHTMLName = "rostaing_report.html"
	reportTextName = "rostaing_report.txt"
)

// SessionResponse is returned by GET /api/session.
type SessionResponse struct {
	Loaded   bool               `json:"loaded"`
	Dataset  *core.Summary      `json:"dataset,omitempty"`
	Analyses core.LimiterStatus `json:"analyses"`
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sum := s.service.Snapshot(sessionFrom(r))
	writeJSON(w, http.StatusOK, SessionResponse{
		Loaded:   sum != nil,
		Dataset:  sum,
		Analyses: s.service.LimiterStatus(),
	})
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	sum, err := s.service.Analyze(ctx, sessionFrom(r), name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset(r.Context(), sessionFrom(r))
	w.WriteHeader(http.StatusNoContent)
}

// handleAPIData returns one page of rows; page_size and page default to
// the display settings.
func (s *Server) handleAPIData(w http.ResponseWriter, r *http.Request) {
	size, page, err := s.pageParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.service.Page(sessionFrom(r), size, page)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAPIDataExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := s.service.ExportCSV(sessionFrom(r), &buf)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", exportName(name))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAPIReportHTML(w http.ResponseWriter, r *http.Request) {
	out, err := s.service.ReportHTML(sessionFrom(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	attachment(w, "text/html; charset=utf-8", reportHTMLName)
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleAPIReportText(w http.ResponseWriter, r *http.Request) {
	out, err := s.service.ReportText(sessionFrom(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	attachment(w, "text/plain; charset=utf-8", reportTextName)
	_, _ = w.Write([]byte(out))
}

// handleAPITest runs a test named in the path. With format=csv the result
// is downloaded under its export name, otherwise it is returned as JSON.
func (s *Server) handleAPITest(w http.ResponseWriter, r *http.Request) {
	test, err := core.ParseTest(chi.URLParam(r, "test"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	res, err := s.service.RunTest(r.Context(), sessionFrom(r), testRequestFromQuery(test, q))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if q.Get("format") != "csv" {
		writeJSON(w, http.StatusOK, res)
		return
	}

	var buf bytes.Buffer
	if err := res.WriteCSV(&buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", res.ExportName())
	_, _ = buf.WriteTo(w)
}
