package report

import (
	"fmt"
)

// HTMLRenderer is implemented by values that can render themselves as an
// HTML document.
type HTMLRenderer interface {
	HTML() (string, error)
}

// Rendering formats.
const (
	FormatHTML = "html"
	FormatText = "text"
)

// Rendered is the output of Render.
type Rendered struct {
	Format  string
	Content string
	// Warning explains why the HTML rendering was skipped, if it was.
	Warning string
}

// RenderError is returned when a value has no usable rendering.
type RenderError struct {
	Type string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot render %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("cannot render %s: no HTML or text representation", e.Type)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render prefers the HTML rendering of v and falls back to its String
// form when HTML is unavailable or fails.
func Render(v any) (*Rendered, error) {
	typeName := fmt.Sprintf("%T", v)

	var htmlErr error
	if h, ok := v.(HTMLRenderer); ok {
		out, err := h.HTML()
		if err == nil {
			return &Rendered{Format: FormatHTML, Content: out}, nil
		}
		htmlErr = err
	}

	if s, ok := v.(fmt.Stringer); ok {
		out := &Rendered{Format: FormatText, Content: s.String()}
		if htmlErr != nil {
			out.Warning = fmt.Sprintf("HTML rendering failed, showing text: %v", htmlErr)
		}
		return out, nil
	}
	return nil, &RenderError{Type: typeName, Err: htmlErr}
}
