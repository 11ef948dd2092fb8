package dataset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/extrame/xls"
	"github.com/richardlehane/mscfb"
)

// cfbMagic opens every OLE2 compound file, the container of Excel 97-2003
// (BIFF) workbooks.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const (
	cfbSectorSize       = 512
	cfbHeaderFATs       = 109 // FAT sector slots in the header
	cfbEntriesPerSector = cfbSectorSize / 4
	cfbDirEntrySize     = 128

	cfbFATSect    = 0xFFFFFFFD
	cfbEndOfChain = 0xFFFFFFFE
	cfbFreeSect   = 0xFFFFFFFF
	cfbNoStream   = 0xFFFFFFFF

	cfbTypeStream = 2
	cfbTypeRoot   = 5

	// biffMaxCols is the column limit of a BIFF8 worksheet.
	biffMaxCols = 256
)

// maxBIFFStream is the largest workbook stream repackCFB can map without
// DIFAT sectors.
const maxBIFFStream = (cfbHeaderFATs*cfbEntriesPerSector - cfbHeaderFATs - 1) * cfbSectorSize

func isCompoundFile(data []byte) bool {
	return bytes.HasPrefix(data, cfbMagic)
}

// parseBIFF reads the first sheet of an Excel 97-2003 workbook. Gaps
// between rows are kept as empty records; trailing empty rows are dropped.
func parseBIFF(data []byte) ([]string, [][]string, error) {
	stream, err := workbookStream(data)
	if err != nil {
		return nil, nil, err
	}

	wb, err := xls.OpenReader(bytes.NewReader(repackCFB(stream)), "utf-8")
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, errors.New("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, biffCells(sheetRow(sheet, i)))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return sheetRecords(rows)
}

// workbookStream extracts the BIFF stream from a compound file.
func workbookStream(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read compound file: %w", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if len(entry.Path) != 0 || (entry.Name != "Workbook" && entry.Name != "Book") {
			continue
		}
		if entry.Size > maxBIFFStream {
			return nil, fmt.Errorf("workbook stream of %d bytes exceeds the %d byte limit for .xls files", entry.Size, maxBIFFStream)
		}
		stream, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read workbook stream: %w", err)
		}
		return stream, nil
	}
	return nil, errors.New("no Workbook stream: the file is password protected or not an Excel 97-2003 workbook")
}

// sheetRow returns row i, or nil when the sheet has no such row. The
// reader dereferences missing rows, hence the recover.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// biffCells returns the text of a row's cells up to its last non-empty
// one. Rows without a ROW record report no width and are scanned to the
// sheet's column limit.
func biffCells(row *xls.Row) []string {
	if row == nil {
		return nil
	}
	width := row.LastCol()
	if width <= 0 || width > biffMaxCols {
		width = biffMaxCols
	}
	cells := make([]string, width)
	for j := range cells {
		cells[j] = row.Col(j)
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// repackCFB lays stream out as the only stream of a minimal compound file:
// the FAT sectors, one directory sector, then the stream in contiguous
// sectors. The mini stream cutoff is zero so every read goes through the
// FAT. The BIFF reader follows sector chains without bounds checks, so it
// is only ever given a container built here.
func repackCFB(stream []byte) []byte {
	n := max(1, (len(stream)+cfbSectorSize-1)/cfbSectorSize)
	fats := 1
	for fats*cfbEntriesPerSector < fats+1+n {
		fats++
	}
	dir := fats
	first := fats + 1
	last := first + n - 1

	le := binary.LittleEndian
	out := make([]byte, cfbSectorSize*(last+2))

	h := out[:cfbSectorSize]
	copy(h, cfbMagic)
	le.PutUint16(h[0x18:], 0x003E) // minor version
	le.PutUint16(h[0x1A:], 3)      // major version
	le.PutUint16(h[0x1C:], 0xFFFE) // byte order
	le.PutUint16(h[0x1E:], 9)      // sector shift
	le.PutUint16(h[0x20:], 6)      // mini sector shift
	le.PutUint32(h[0x2C:], uint32(fats))
	le.PutUint32(h[0x30:], uint32(dir))
	le.PutUint32(h[0x38:], 0) // mini stream cutoff
	le.PutUint32(h[0x3C:], cfbEndOfChain)
	le.PutUint32(h[0x44:], cfbEndOfChain)
	for i := 0; i < cfbHeaderFATs; i++ {
		sid := uint32(cfbFreeSect)
		if i < fats {
			sid = uint32(i)
		}
		le.PutUint32(h[0x4C+4*i:], sid)
	}

	sector := func(sid int) []byte {
		off := cfbSectorSize * (sid + 1)
		return out[off : off+cfbSectorSize]
	}

	fat := out[cfbSectorSize : cfbSectorSize*(fats+1)]
	for sid := 0; sid < fats*cfbEntriesPerSector; sid++ {
		next := uint32(cfbFreeSect)
		switch {
		case sid < fats:
			next = cfbFATSect
		case sid == dir, sid == last:
			next = cfbEndOfChain
		case sid >= first && sid < last:
			next = uint32(sid + 1)
		}
		le.PutUint32(fat[4*sid:], next)
	}

	entries := sector(dir)
	putDirEntry(entries[:cfbDirEntrySize], "Root Entry", cfbTypeRoot, 1, cfbEndOfChain, 0)
	putDirEntry(entries[cfbDirEntrySize:2*cfbDirEntrySize], "Workbook", cfbTypeStream, cfbNoStream, uint32(first), uint32(len(stream)))

	copy(out[cfbSectorSize*(first+1):], stream)
	return out
}

func putDirEntry(b []byte, name string, typ byte, child, start, size uint32) {
	le := binary.LittleEndian
	units := utf16.Encode([]rune(name))
	for i, u := range units {
		le.PutUint16(b[2*i:], u)
	}
	le.PutUint16(b[64:], uint16(2*(len(units)+1)))
	b[66] = typ
	b[67] = 1 // black
	le.PutUint32(b[68:], cfbNoStream)
	le.PutUint32(b[72:], cfbNoStream)
	le.PutUint32(b[76:], child)
	le.PutUint32(b[116:], start)
	le.PutUint32(b[120:], size)
}
