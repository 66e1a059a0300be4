// Package diag writes advisory trace files when a unit's decision falls back
// to a safe default. Traces never affect control flow.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Trace is the context captured for one fallback.
type Trace struct {
	UnitID   int
	Name     string
	Callsign string
	Round    int
	Phase    int
	Reason   string
	Order    string
	Debug    string
	Err      error
}

type Sink interface {
	Record(t Trace) error
}

// Nop discards traces.
type Nop struct{}

func (Nop) Record(Trace) error { return nil }

// FileSink writes one JSON trace file per fallback into dir, named
// <timestamp>_<callsign>_<id fragment>.trace.
type FileSink struct {
	dir string
	now func() time.Time
}

func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &FileSink{dir: dir, now: time.Now}, nil
}

func (s *FileSink) Record(t Trace) error {
	ts := s.now()
	name := fmt.Sprintf("%s_%s_%s.trace", ts.Format("20060102_150405"), fileSafe(t.Callsign), uuid.NewString()[:8])
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	logger := zerolog.New(f).With().Time("at", ts).Logger()
	ev := logger.Error().
		Int("unit", t.UnitID).
		Str("name", t.Name).
		Str("callsign", t.Callsign).
		Int("round", t.Round).
		Int("phase", t.Phase).
		Str("order", t.Order).
		Str("debug", t.Debug)
	if t.Err != nil {
		ev = ev.Err(t.Err)
	}
	ev.Msg(t.Reason)
	return nil
}

func fileSafe(s string) string {
	if s == "" {
		return "unit"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, s)
}
