// Package backup writes the whole store to a JSON snapshot and restores it.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sadopc/solartrack/internal/store"
	"github.com/ulikunitz/xz"
)

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("invalid backup file")

// FormatError means the file is not a usable snapshot. The store has not been
// touched.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid backup file: " + e.Reason
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErr(reason string) error {
	return &FormatError{Reason: reason}
}

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// Store is the part of *store.Store the orchestrator needs.
type Store interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
	ReplaceAll(ctx context.Context, snap *store.Snapshot) error
}

type Summary struct {
	Projects  int
	Employees int
	Entries   int
}

func summarize(s *store.Snapshot) Summary {
	return Summary{Projects: len(s.Projects), Employees: len(s.Employees), Entries: len(s.Entries)}
}

type Orchestrator struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(st Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: st, log: slog.New(slog.DiscardHandler), now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type CreateOptions struct {
	// Compress wraps the JSON document in an xz stream.
	Compress bool
}

// Create writes every project, employee and entry, inactive ones included.
func (o *Orchestrator) Create(ctx context.Context, w io.Writer, opts CreateOptions) (Summary, error) {
	snap, err := o.store.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	doc := newDocument(snap, o.now())

	out := w
	var xw *xz.Writer
	if opts.Compress {
		xw, err = xz.NewWriter(w)
		if err != nil {
			return Summary{}, fmt.Errorf("create xz writer: %w", err)
		}
		out = xw
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return Summary{}, fmt.Errorf("encode backup: %w", err)
	}
	if xw != nil {
		if err := xw.Close(); err != nil {
			return Summary{}, fmt.Errorf("close xz writer: %w", err)
		}
	}

	sum := summarize(snap)
	o.log.Info("backup created",
		"projects", sum.Projects, "employees", sum.Employees, "entries", sum.Entries, "compressed", opts.Compress)
	return sum, nil
}

// Decode reads and validates a snapshot without touching the store. Plain
// and xz compressed input are both accepted.
func Decode(r io.Reader) (*store.Snapshot, error) {
	br := bufio.NewReader(r)
	var in io.Reader = br
	if head, _ := br.Peek(len(xzMagic)); bytes.Equal(head, xzMagic) {
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, formatErr(fmt.Sprintf("xz: %v", err))
		}
		in = xr
	}

	var doc document
	dec := json.NewDecoder(in)
	if err := dec.Decode(&doc); err != nil {
		return nil, formatErr(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, formatErr("trailing data after backup document")
	}
	return doc.snapshot()
}

// Apply replaces the store content with snap. Existing data is discarded.
func (o *Orchestrator) Apply(ctx context.Context, snap *store.Snapshot) (Summary, error) {
	if err := o.store.ReplaceAll(ctx, snap); err != nil {
		return Summary{}, err
	}
	sum := summarize(snap)
	o.log.Warn("store restored from backup",
		"projects", sum.Projects, "employees", sum.Employees, "entries", sum.Entries)
	return sum, nil
}

// Restore validates the whole backup first and then replaces the store
// content in one transaction. On any error the store is unchanged.
func (o *Orchestrator) Restore(ctx context.Context, r io.Reader) (Summary, error) {
	snap, err := Decode(r)
	if err != nil {
		o.log.Error("restore rejected", "error", err)
		return Summary{}, err
	}
	return o.Apply(ctx, snap)
}

// Filename names a backup taken at now.
func Filename(now time.Time, compressed bool) string {
	name := "SolarTrack_backup_" + now.Format("2006-01-02") + ".json"
	if compressed {
		name += ".xz"
	}
	return name
}
