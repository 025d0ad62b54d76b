// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"context"
	"strings"
	"sync"

	"devfolio/internal/models"
)

// State is the phase of a search session.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateQuerying
	StateResults
	StateNoResults
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateQuerying:
		return "querying"
	case StateResults:
		return "results"
	case StateNoResults:
		return "no-results"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// QueryFunc performs the actual search once input has settled.
type QueryFunc func(ctx context.Context, query string) ([]models.Post, error)

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	State   State
	Query   string
	Results []models.Post
	Err     error
}

// Session drives idle → debouncing → querying → {results | no-results |
// error}. Every Input restarts the cycle; responses to input that has
// since been replaced are discarded.
type Session struct {
	ctx       context.Context
	query     QueryFunc
	debouncer *Debouncer
	onChange  func(Snapshot)

	mu   sync.Mutex
	gen  uint64
	snap Snapshot
}

// NewSession creates an idle session. onChange, when non-nil, is called
// after every state transition.
func NewSession(ctx context.Context, query QueryFunc, debouncer *Debouncer, onChange func(Snapshot)) *Session {
	if debouncer == nil {
		debouncer = NewDebouncer(DefaultDelay, nil)
	}
	return &Session{ctx: ctx, query: query, debouncer: debouncer, onChange: onChange}
}

// Input records new search text. Blank input returns the session to idle.
func (s *Session) Input(text string) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if text == "" {
		s.snap = Snapshot{State: StateIdle}
		snap := s.snap
		s.mu.Unlock()
		s.debouncer.Cancel()
		s.notify(snap)
		return
	}
	s.snap = Snapshot{State: StateDebouncing, Query: text}
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	s.debouncer.Trigger(func() { s.run(gen, text) })
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Session) run(gen uint64, text string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.snap.State = StateQuerying
	snap := s.snap
	s.mu.Unlock()
	s.notify(snap)

	posts, err := s.query(s.ctx, text)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		s.snap = Snapshot{State: StateError, Query: text, Err: err}
	case len(posts) == 0:
		s.snap = Snapshot{State: StateNoResults, Query: text}
	default:
		s.snap = Snapshot{State: StateResults, Query: text, Results: posts}
	}
	snap = s.snap
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
