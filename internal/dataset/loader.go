package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Parse decodes raw file bytes according to the format implied by name.
// Content errors are returned as *ParseError; an unrecognised suffix wraps
// ErrUnsupportedFormat. A panic inside a third-party decoder is converted
// into a ParseError rather than taking down the caller.
func Parse(data []byte, name string) (t *Table, err error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = &ParseError{Format: format, Name: name, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	var (
		header  []string
		records [][]string
	)
	switch format {
	case FormatCSV:
		header, records, err = parseCSV(data)
	case FormatExcel:
		header, records, err = parseExcel(data)
	case FormatJSON:
		header, records, err = parseJSON(data)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Name: name, Err: err}
	}

	t, err = New(name, format, header, records)
	if err != nil {
		return nil, &ParseError{Format: format, Name: name, Err: err}
	}
	return t, nil
}

// Loader memoizes Parse by content and declared name. Identical inputs
// return the same *Table; concurrent loads of the same input share one
// parse. Failures are never cached.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]*Table
	group singleflight.Group
}

// NewLoader returns an empty loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Table)}
}

// Load parses data as the file name, reusing a previous result for the same
// bytes and name.
func (l *Loader) Load(data []byte, name string) (*Table, error) {
	key := cacheKey(data, name)

	l.mu.RLock()
	t, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		l.mu.RLock()
		cached, ok := l.cache[key]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}

		t, err := Parse(data, name)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[key] = t
		l.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Len returns the number of cached tables.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

// Forget drops every cached table.
func (l *Loader) Forget() {
	l.mu.Lock()
	l.cache = make(map[string]*Table)
	l.mu.Unlock()
}

func cacheKey(data []byte, name string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + "\x00" + name
}
