// Package export serializes a fetched session collection into the CSV
// layout the usage report download uses.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/videosdk-community/session-usage-api/internal/report"
	"github.com/videosdk-community/session-usage-api/pkg/videosdk"
)

// DefaultBatchSize is how many rows are written between progress
// events on the streaming path. Coarser than per-row so large months do
// not flood the event stream.
const DefaultBatchSize = 50

var baseColumns = []string{
	"session_id",
	"room_id",
	"session_start_time",
	"session_end_time",
	"status",
	"number_of_participants",
}

// Builder turns a session collection into CSV. ParticipantColumns
// fixes how many participantN column groups are emitted; zero lets the
// widest session decide.
type Builder struct {
	ParticipantColumns int
	BatchSize          int
}

func NewBuilder() *Builder {
	return &Builder{BatchSize: DefaultBatchSize}
}

// Filename is the download name for a month's report.
func Filename(w report.Window) string {
	return fmt.Sprintf("usage_%d_%d.csv", w.Year, w.Month)
}

// Build writes the whole report in one go, for the synchronous
// download path. Rows appear in collection order, one per session.
func (b *Builder) Build(sessions []videosdk.Session) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.write(&buf, sessions, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run formats sessions in a goroutine, reporting progress per batch of
// rows and finishing with a done event that carries the file bytes.
// The channel closes after the terminal event, or without one if the
// consumer's context ends first.
func (b *Builder) Run(ctx context.Context, sessions []videosdk.Session, filename string) <-chan report.Event {
	out := make(chan report.Event)

	go func() {
		defer close(out)

		var buf bytes.Buffer
		err := b.write(&buf, sessions, func(rows int) bool {
			return report.Emit(ctx, out, report.Event{
				Kind:        report.EventProgress,
				Stage:       report.StageFormat,
				RecordCount: rows,
			})
		})

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			report.Emit(ctx, out, report.Event{Kind: report.EventError, Stage: report.StageFormat, Message: err.Error()})
			return
		}
		report.Emit(ctx, out, report.Event{
			Kind:       report.EventDone,
			Stage:      report.StageFormat,
			TotalCount: len(sessions),
			Filename:   filename,
			File:       buf.Bytes(),
		})
	}()

	return out
}

// write streams the header and every row into w, invoking onBatch (if
// non-nil) after each batch of rows. onBatch returning false aborts the
// build.
func (b *Builder) write(buf *bytes.Buffer, sessions []videosdk.Session, onBatch func(rows int) bool) error {
	width := b.width(sessions)
	batch := b.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	w := csv.NewWriter(buf)
	if err := w.Write(header(width)); err != nil {
		return err
	}

	for i, s := range sessions {
		if err := w.Write(row(s, width)); err != nil {
			return err
		}
		if onBatch != nil && (i+1)%batch == 0 {
			if !onBatch(i + 1) {
				return context.Canceled
			}
		}
	}

	w.Flush()
	return w.Error()
}

// width resolves the number of participant column groups: the caller's
// override when set, otherwise the widest session in the collection.
func (b *Builder) width(sessions []videosdk.Session) int {
	if b.ParticipantColumns > 0 {
		return b.ParticipantColumns
	}

	widest := 0
	for _, s := range sessions {
		if n := len(s.Participants); n > widest {
			widest = n
		}
	}
	return widest
}

func header(width int) []string {
	cols := make([]string, 0, len(baseColumns)+width*4)
	cols = append(cols, baseColumns...)
	for i := 1; i <= width; i++ {
		prefix := fmt.Sprintf("participant%d_", i)
		cols = append(cols,
			prefix+"id",
			prefix+"name",
			prefix+"first_start",
			prefix+"last_end",
		)
	}
	return cols
}

func row(s videosdk.Session, width int) []string {
	cols := make([]string, 0, len(baseColumns)+width*4)
	cols = append(cols,
		s.ID,
		s.RoomID,
		s.Start,
		s.End,
		s.Status,
		strconv.Itoa(len(s.Participants)),
	)

	for i := 0; i < width; i++ {
		if i >= len(s.Participants) {
			cols = append(cols, "", "", "", "")
			continue
		}
		p := s.Participants[i]
		first, last := timelogBounds(p)
		cols = append(cols, p.ParticipantID, p.Name, first, last)
	}
	return cols
}

// timelogBounds returns the earliest start and latest end across a
// participant's connection intervals. Timestamps are ISO 8601, so
// lexicographic comparison orders them correctly.
func timelogBounds(p videosdk.Participant) (first, last string) {
	for _, t := range p.Timelog {
		if t.Start != "" && (first == "" || t.Start < first) {
			first = t.Start
		}
		if t.End != "" && t.End > last {
			last = t.End
		}
	}
	return first, last
}
