// Package source parses PatentsView-style TSV dumps into loader rows.  Files
// are streamed in chunks so multi-gigabyte dumps never sit in memory whole.
package source

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/techflow/citechain/internal/domain/graph"
	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

// DefaultChunkSize is the row count handed to the sink per call.
const DefaultChunkSize = 10000

// Reader streams TSV dumps.  A malformed date nulls that field and keeps the
// record; any structural problem (missing column, bad row) is fatal.
type Reader struct {
	log logging.Logger
}

// NewReader creates a Reader.
func NewReader(log logging.Logger) *Reader {
	return &Reader{log: log}
}

func newTSV(r io.Reader) *csv.Reader {
	c := csv.NewReader(r)
	c.Comma = '\t'
	c.LazyQuotes = true
	c.FieldsPerRecord = -1
	return c
}

// header maps column names to indices and resolves required columns.
type header map[string]int

func readHeader(c *csv.Reader) (header, error) {
	row, err := c.Read()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceUnusable, "failed to read TSV header")
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(name)] = i
	}
	return h, nil
}

func (h header) require(names ...string) error {
	for _, name := range names {
		if _, ok := h[name]; !ok {
			return errors.New(errors.ErrCodeSourceUnusable, "required column missing").WithDetail(name)
		}
	}
	return nil
}

func (h header) get(row []string, name string) string {
	ix, ok := h[name]
	if !ok || ix >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[ix])
}

// parseDate returns nil for empty or malformed values; the caller keeps the
// record either way.
func (r *Reader) parseDate(value, column, id string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		r.log.Warn("malformed date in source, field nulled",
			logging.String("code", errors.ErrCodeMalformedDate.String()),
			logging.String("column", column),
			logging.String("id", id),
			logging.String("value", value))
		return nil
	}
	d := graph.TruncateDate(t)
	return &d
}

// forEachChunk drives the row loop shared by all readers.
func forEachChunk[T any](c *csv.Reader, chunkSize int, parse func([]string) (T, bool), sink func([]T) error) error {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	chunk := make([]T, 0, chunkSize)
	for {
		row, err := c.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSourceUnusable, "failed to read TSV row")
		}
		item, ok := parse(row)
		if !ok {
			continue
		}
		chunk = append(chunk, item)
		if len(chunk) == chunkSize {
			if err := sink(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		return sink(chunk)
	}
	return nil
}

// ReadPatents streams patent rows.  Requires id, type, date columns;
// application columns are optional.
func (r *Reader) ReadPatents(src io.Reader, chunkSize int, sink func([]graph.PatentRow) error) error {
	c := newTSV(src)
	h, err := readHeader(c)
	if err != nil {
		return err
	}
	if err := h.require("id", "type", "date"); err != nil {
		return err
	}
	return forEachChunk(c, chunkSize, func(row []string) (graph.PatentRow, bool) {
		pid := h.get(row, "id")
		if pid == "" {
			return graph.PatentRow{}, false
		}
		return graph.PatentRow{
			PID:             pid,
			Kind:            h.get(row, "type"),
			Date:            r.parseDate(h.get(row, "date"), "date", pid),
			ApplicationID:   h.get(row, "application_id"),
			ApplicationDate: r.parseDate(h.get(row, "application_date"), "application_date", pid),
		}, true
	}, sink)
}

// ReadAssignees streams assignee rows.  The display name is the organization
// when present, otherwise "first last".
func (r *Reader) ReadAssignees(src io.Reader, chunkSize int, sink func([]graph.AssigneeRow) error) error {
	c := newTSV(src)
	h, err := readHeader(c)
	if err != nil {
		return err
	}
	if err := h.require("id"); err != nil {
		return err
	}
	return forEachChunk(c, chunkSize, func(row []string) (graph.AssigneeRow, bool) {
		id := h.get(row, "id")
		if id == "" {
			return graph.AssigneeRow{}, false
		}
		name := h.get(row, "organization")
		if name == "" {
			name = strings.TrimSpace(h.get(row, "name_first") + " " + h.get(row, "name_last"))
		}
		return graph.AssigneeRow{ID: id, Name: name, Type: h.get(row, "type")}, true
	}, sink)
}

// ReadInventors streams inventor rows.
func (r *Reader) ReadInventors(src io.Reader, chunkSize int, sink func([]graph.InventorRow) error) error {
	c := newTSV(src)
	h, err := readHeader(c)
	if err != nil {
		return err
	}
	if err := h.require("id"); err != nil {
		return err
	}
	return forEachChunk(c, chunkSize, func(row []string) (graph.InventorRow, bool) {
		id := h.get(row, "id")
		if id == "" {
			return graph.InventorRow{}, false
		}
		name := strings.TrimSpace(h.get(row, "name_first") + " " + h.get(row, "name_last"))
		return graph.InventorRow{ID: id, Name: name}, true
	}, sink)
}

// ReadEdges streams two-column relationship dumps, e.g. patent_assignee
// (assignee_id→patent_id) or uspatentcitation (patent_id→citation_id).
// fromCol and toCol name the columns.
func (r *Reader) ReadEdges(src io.Reader, fromCol, toCol string, chunkSize int, sink func([]graph.EdgeRow) error) error {
	c := newTSV(src)
	h, err := readHeader(c)
	if err != nil {
		return err
	}
	if err := h.require(fromCol, toCol); err != nil {
		return err
	}
	return forEachChunk(c, chunkSize, func(row []string) (graph.EdgeRow, bool) {
		from := h.get(row, fromCol)
		to := h.get(row, toCol)
		if from == "" || to == "" {
			return graph.EdgeRow{}, false
		}
		return graph.EdgeRow{From: from, To: to}, true
	}, sink)
}
