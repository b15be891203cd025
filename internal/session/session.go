package session

import (
	"sync/atomic"

	"github.com/metcalfc/pardiff/internal/diff"
	"github.com/metcalfc/pardiff/internal/document"
	"github.com/metcalfc/pardiff/internal/logging"
	"github.com/metcalfc/pardiff/internal/metadata"
)

// Sources names the files a session is built from. Aux is optional.
type Sources struct {
	Old string
	New string
	Aux string
}

// Paths returns the non-empty source paths.
func (s Sources) Paths() []string {
	out := []string{s.Old, s.New}
	if s.Aux != "" {
		out = append(out, s.Aux)
	}
	return out
}

// Session holds the immutable snapshots and metadata of one load. Lookups
// against it need no locking.
type Session struct {
	Old     *document.Snapshot
	New     *document.Snapshot
	Tables  *metadata.Tables
	Options Options
}

// New builds a session from already loaded parts.
func New(old, new *document.Snapshot, tables *metadata.Tables, opts Options) *Session {
	if tables == nil {
		tables = metadata.Empty()
	}
	return &Session{Old: old, New: new, Tables: tables, Options: opts}
}

// Load reads both snapshots and, when given, the auxiliary file. Any read
// failure is returned; malformed content never is.
func Load(src Sources, opts Options) (*Session, error) {
	old, err := document.Load(src.Old)
	if err != nil {
		return nil, err
	}
	new, err := document.Load(src.New)
	if err != nil {
		return nil, err
	}

	s := New(old, new, nil, opts)
	if src.Aux != "" {
		tables, err := metadata.Load(src.Aux)
		if err != nil {
			return nil, err
		}
		s.Tables = tables
	}
	return s, nil
}

// Lookup renders label using the session's snapshots and options.
func (s *Session) Lookup(label string) (Result, error) {
	return Lookup(label, s.Old.Paragraphs, s.New.Paragraphs, s.Tables, s.Options)
}

// Entry is one label in a session listing.
type Entry struct {
	Label  string
	Status Status
	Stats  diff.Stats
}

// Entries lists every semantic label of both snapshots, in new-snapshot
// order followed by labels only the old snapshot has.
func (s *Session) Entries() []Entry {
	seen := make(map[string]bool)
	var out []Entry
	for _, label := range append(s.New.Paragraphs.Labels(), s.Old.Paragraphs.Labels()...) {
		if seen[label] {
			continue
		}
		seen[label] = true

		res, err := s.Lookup(label)
		if err != nil {
			continue
		}
		out = append(out, Entry{Label: label, Status: res.Status, Stats: res.Stats})
	}
	return out
}

func (s *Session) sameContent(o *Session) bool {
	return s.Old.Digest == o.Old.Digest &&
		s.New.Digest == o.New.Digest &&
		s.Tables.Digest == o.Tables.Digest
}

// Store holds the current session and swaps it atomically on reload.
type Store struct {
	src     Sources
	opts    Options
	current atomic.Pointer[Session]
}

// Open loads the initial session.
func Open(src Sources, opts Options) (*Store, error) {
	s, err := Load(src, opts)
	if err != nil {
		return nil, err
	}
	st := &Store{src: src, opts: opts}
	st.current.Store(s)
	return st, nil
}

// Current returns the active session.
func (st *Store) Current() *Session {
	return st.current.Load()
}

// Sources returns the files the store loads from.
func (st *Store) Sources() Sources {
	return st.src
}

// Reload re-reads all sources. The active session is replaced only when a
// file's content changed; on error the previous session stays active.
func (st *Store) Reload() (bool, error) {
	next, err := Load(st.src, st.opts)
	if err != nil {
		return false, err
	}
	if next.sameContent(st.Current()) {
		logging.Debug().Msg("sources unchanged, keeping session")
		return false, nil
	}
	st.current.Store(next)
	logging.Info().Msg("session reloaded")
	return true, nil
}
