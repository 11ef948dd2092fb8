package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// trimBOM drops a leading UTF-8 byte order mark, commonly added by Windows
// programs.
func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// checkUTF8 returns an error naming the offset of the first invalid byte.
func checkUTF8(data []byte) error {
	if utf8.Valid(data) {
		return nil
	}
	for off := 0; off < len(data); {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid UTF-8 byte 0x%02x at offset %d", data[off], off)
		}
		off += size
	}
	return errors.New("invalid UTF-8")
}

func parseCSV(data []byte) ([]string, [][]string, error) {
	data = trimBOM(data)
	if err := checkUTF8(data); err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errNoColumns
	}
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(rec))
		}
		records = append(records, rec)
	}
	return header, records, nil
}
