package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Layout wraps body in the page shell with the shared assets and footer.
func Layout(title string, year int, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="https://cdnjs.cloudflare.com/ajax/libs/html2canvas/1.4.1/html2canvas.min.js" defer></script>`)
		h.raw(`<script src="https://cdnjs.cloudflare.com/ajax/libs/html2pdf.js/0.10.1/html2pdf.bundle.min.js" defer></script>`)
		h.raw(`<script src="/static/app.js" defer></script></head><body>`)
		h.raw(`<header class="site-header"><h1>rreport</h1><p>Exploratory data analysis console</p></header><main>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main><footer class="site-footer">&copy; `, strconv.Itoa(year), ` rreport</footer></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` <span>`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(` <code>`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// SuccessBanner renders a confirmation message.
func SuccessBanner(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-success" role="status">`)
		h.text(message)
		h.raw(`</div>`)
		return h.err
	})
}
