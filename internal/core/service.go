package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/rreport/internal/config"
	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/logging"
	"github.com/JonMunkholm/rreport/internal/report"
	"github.com/JonMunkholm/rreport/internal/session"
	"github.com/JonMunkholm/rreport/internal/stats"
)

// AnalyzeTimeout is the maximum duration for an analysis after a slot
// has been acquired.
var AnalyzeTimeout = 5 * time.Minute

// DefaultFullViewMaxRows caps the full view when Options leaves it unset.
const DefaultFullViewMaxRows = 5000

// Options configures a Service.
type Options struct {
	MaxFileSize     int64
	MaxConcurrent   int
	MaxWaitTime     time.Duration
	FullViewMaxRows int
	Report          report.Options
}

// OptionsFromConfig builds Service options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxFileSize:     cfg.Upload.MaxFileSize,
		MaxConcurrent:   cfg.Upload.MaxConcurrent,
		MaxWaitTime:     cfg.Upload.MaxWaitTime,
		FullViewMaxRows: cfg.Display.FullViewMaxRows,
		Report: report.Options{
			SampleRows:       cfg.Report.SampleRows,
			TopValues:        cfg.Report.TopValues,
			MissingWarnRatio: cfg.Report.MissingWarnRatio,
			Correlations:     cfg.Report.Correlations,
		},
	}
}

// Service runs the console actions against a session. It holds no
// per-user state itself; the loader cache and analysis limiter are
// shared by all sessions.
type Service struct {
	opts    Options
	loader  *dataset.Loader
	limiter *ActionLimiter
}

// NewService creates a new Service instance.
func NewService(opts Options) *Service {
	if opts.FullViewMaxRows <= 0 {
		opts.FullViewMaxRows = DefaultFullViewMaxRows
	}
	return &Service{
		opts:    opts,
		loader:  dataset.NewLoader(),
		limiter: NewActionLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
	}
}

// Summary describes the dataset held by a session.
type Summary struct {
	Name           string         `json:"name" yaml:"name"`
	Format         dataset.Format `json:"format" yaml:"format"`
	Rows           int            `json:"rows" yaml:"rows"`
	Cols           int            `json:"cols" yaml:"cols"`
	Columns        []ColumnInfo   `json:"columns" yaml:"columns"`
	NumericColumns []string       `json:"numeric_columns" yaml:"numeric_columns"`
	Warnings       []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnInfo is a column's name and inferred kind.
type ColumnInfo struct {
	Name string       `json:"name" yaml:"name"`
	Kind dataset.Kind `json:"kind" yaml:"kind"`
}

func summarize(t *dataset.Table, r *report.Report) *Summary {
	s := &Summary{
		Name:           t.Name(),
		Format:         t.Format(),
		Rows:           t.NumRows(),
		Cols:           t.NumCols(),
		Columns:        make([]ColumnInfo, 0, t.NumCols()),
		NumericColumns: t.NumericColumns(),
	}
	for _, c := range t.Columns() {
		s.Columns = append(s.Columns, ColumnInfo{Name: c.Name(), Kind: c.Kind()})
	}
	if r != nil {
		s.Warnings = r.Warnings
	}
	return s
}

// Analyze loads data under the declared name, generates its report and
// stores both in sess. On any failure the session keeps its previous
// dataset.
func (s *Service) Analyze(ctx context.Context, sess *session.Session, name string, data []byte) (*Summary, error) {
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, len(data), s.opts.MaxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, AnalyzeTimeout)
	defer cancel()

	ip, userAgent := logging.ClientFromContext(ctx)
	log := logging.WithFields(ctx,
		"file", name,
		"bytes", len(data),
		"ip", ip,
		"user_agent", userAgent,
	)
	start := time.Now()

	t, err := s.loader.Load(data, name)
	if err != nil {
		log.Warn("dataset load failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := report.Generate(t, s.opts.Report)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	if err := sess.Set(t, r); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}

	log.Info("dataset analyzed",
		"rows", t.NumRows(),
		"cols", t.NumCols(),
		"duration", time.Since(start),
	)
	return summarize(t, r), nil
}

// Reset clears the session's dataset. It is safe to call on an empty
// session.
func (s *Service) Reset(ctx context.Context, sess *session.Session) {
	sess.Clear()
	logging.FromContext(ctx).Info("session reset")
}

// Snapshot returns the summary of the loaded dataset, or nil when the
// session is empty.
func (s *Service) Snapshot(sess *session.Session) *Summary {
	t, r := sess.Get()
	if t == nil {
		return nil
	}
	return summarize(t, r)
}

// Page returns one page of the loaded dataset.
func (s *Service) Page(sess *session.Session, size, page int) (*dataset.Page, error) {
	t, _ := sess.Get()
	if t == nil {
		return nil, ErrNoData
	}
	return dataset.Paginate(t, size, page)
}

// FullView is the whole table, capped at Options.FullViewMaxRows.
type FullView struct {
	Columns   []string
	Rows      [][]string
	TotalRows int
	Truncated bool
}

// FullView returns the rows for the full table view.
func (s *Service) FullView(sess *session.Session) (*FullView, error) {
	t, _ := sess.Get()
	if t == nil {
		return nil, ErrNoData
	}
	n := min(t.NumRows(), s.opts.FullViewMaxRows)
	return &FullView{
		Columns:   t.ColumnNames(),
		Rows:      t.Rows(0, n),
		TotalRows: t.NumRows(),
		Truncated: n < t.NumRows(),
	}, nil
}

// RunTest validates req and runs it on the loaded dataset. The session
// is only read.
func (s *Service) RunTest(ctx context.Context, sess *session.Session, req TestRequest) (*stats.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	_, r := sess.Get()
	if r == nil {
		return nil, ErrNoData
	}

	var (
		res *stats.Result
		err error
	)
	switch req.Test {
	case stats.TestChiSquare:
		res, err = r.ChiSquare(req.Var1, req.Var2)
	case stats.TestKS:
		res, err = r.KolmogorovSmirnov(req.Column, req.Dist)
	case stats.TestMannWhitney:
		res, err = r.MannWhitneyU(req.Column, req.Group)
	case stats.TestShapiroWilk:
		res, err = r.Normality(req.Column, req.Method)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTest, req.Test)
	}
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("test completed",
		"test", string(req.Test),
		"variables", res.Variables,
	)
	return res, nil
}

// RenderReport renders the loaded report, preferring HTML.
func (s *Service) RenderReport(sess *session.Session) (*report.Rendered, error) {
	_, r := sess.Get()
	if r == nil {
		return nil, ErrNoData
	}
	return report.Render(r)
}

// ReportHTML returns the standalone HTML report.
func (s *Service) ReportHTML(sess *session.Session) (string, error) {
	_, r := sess.Get()
	if r == nil {
		return "", ErrNoData
	}
	return r.HTML()
}

// ReportText returns the plain-text report.
func (s *Service) ReportText(sess *session.Session) (string, error) {
	_, r := sess.Get()
	if r == nil {
		return "", ErrNoData
	}
	return r.Text(), nil
}

// ExportCSV writes the loaded table as CSV.
func (s *Service) ExportCSV(sess *session.Session, w io.Writer) (string, error) {
	t, _ := sess.Get()
	if t == nil {
		return "", ErrNoData
	}
	return t.Name(), t.WriteCSV(w)
}

// LimiterStatus reports analysis slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForAnalyses blocks until running analyses finish or ctx is done.
func (s *Service) WaitForAnalyses(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
