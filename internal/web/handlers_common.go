package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/stats"
)

// multipartOverhead is the slack allowed above MaxFileSize for the form
// boundaries and headers.
const multipartOverhead = 1 << 20

// parseIntParam parses an integer query parameter, returning def when it
// is absent.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return def, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", core.ErrInvalidRequest, name, val)
	}
	return i, nil
}

// pageParams reads page_size and page with the configured defaults.
func (s *Server) pageParams(r *http.Request) (size, page int, err error) {
	size, err = parseIntParam(r, "page_size", s.cfg.Display.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	page, err = parseIntParam(r, "page", s.cfg.Display.DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	return size, page, nil
}

// readUpload reads the multipart "file" field, bounded by the upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, fmt.Errorf("%w: upload exceeds the %d byte limit", core.ErrFileTooLarge, maxSize)
		}
		return "", nil, fmt.Errorf("parse upload form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, core.ErrNoFile
		}
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	defer func(f multipart.File) {
		_ = f.Close()
	}(file)

	if header.Size > maxSize {
		return "", nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", core.ErrFileTooLarge, header.Size, maxSize)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return path.Base(header.Filename), data, nil
}

// testRequestFromQuery builds a test request from query parameters named
// as in the test forms.
func testRequestFromQuery(test stats.Test, q url.Values) core.TestRequest {
	return core.TestRequest{
		Test:   test,
		Var1:   q.Get("var1"),
		Var2:   q.Get("var2"),
		Column: q.Get("column"),
		Group:  q.Get("group"),
		Dist:   q.Get("dist"),
		Method: q.Get("method"),
	}
}

// testQuery is the inverse of testRequestFromQuery for the fields req uses.
func testQuery(req core.TestRequest) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("var1", req.Var1)
	set("var2", req.Var2)
	set("column", req.Column)
	set("group", req.Group)
	set("dist", req.Dist)
	set("method", req.Method)
	return q
}

// testCSVURL is the download link for a test result.
func testCSVURL(req core.TestRequest) string {
	q := testQuery(req)
	q.Set("format", "csv")
	return "/api/tests/" + url.PathEscape(string(req.Test)) + "?" + q.Encode()
}

// attachment sets the download headers for name. Non-ASCII names are
// sent as an RFC 2231 filename* parameter.
func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
}

// exportName is the CSV download name for a dataset file name.
func exportName(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = "data"
	}
	return base + ".csv"
}
