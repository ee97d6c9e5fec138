package logfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Segment names one segment file on disk.
type Segment struct {
	Seq  uint64
	Path string
}

// LocatedRecord pairs a decoded record with its position in a segment.
type LocatedRecord struct {
	Record Record
	Offset int64
	Length int64
}

// ListSegments returns segment files in increasing id order. Ids are not
// required to be contiguous; anything that does not parse as a segment name
// is ignored.
func ListSegments(dir string) ([]Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		seq, ok := ParseSegmentName(entry.Name())
		if !ok {
			continue
		}
		segments = append(segments, Segment{Seq: seq, Path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].Seq < segments[j].Seq })
	return segments, nil
}

// ParseSegmentName extracts the segment id from a file name.
func ParseSegmentName(name string) (uint64, bool) {
	if !strings.HasSuffix(name, ".log") {
		return 0, false
	}
	base := strings.TrimSuffix(name, ".log")
	seq, err := strconv.ParseUint(base, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// ScanSegment decodes every record in a segment in append order. validLen is
// the byte length of the well-formed prefix; clean is false when decoding
// stopped before the end of the file, which is either an expected
// crash-truncated tail (in the active segment) or corruption (anywhere
// else); the caller decides which. err reports real I/O failures only.
func ScanSegment(path string) (records []LocatedRecord, validLen int64, clean bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, false, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, 0, false, err
	}

	records = make([]LocatedRecord, 0)
	off := 0
	for off < len(data) {
		rec, consumed, err := DecodeRecord(data[off:])
		if err != nil || consumed == 0 {
			return records, int64(off), false, nil
		}
		records = append(records, LocatedRecord{
			Record: rec,
			Offset: int64(off),
			Length: int64(consumed),
		})
		off += consumed
	}

	return records, int64(off), true, nil
}

// ReadRecordAt reads and decodes exactly one record at a known location.
// The file must stay open for the duration; ReadAt is safe for concurrent
// use on the same handle.
func ReadRecordAt(file *os.File, offset, length int64) (Record, error) {
	buf := make([]byte, length)
	if _, err := file.ReadAt(buf, offset); err != nil {
		return Record{}, err
	}
	rec, consumed, err := DecodeRecord(buf)
	if err != nil {
		return Record{}, err
	}
	if int64(consumed) != length {
		return Record{}, fmt.Errorf("%w: expected %d bytes, decoded %d", ErrInvalidRecord, length, consumed)
	}
	return rec, nil
}
