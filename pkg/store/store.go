// SPDX-License-Identifier: Apache-2.0

// Package store implements the process-wide state store (C2): a
// read-write-locked map keyed by (database side, object kind) holding the
// latest extracted metadata and result artifacts, publishing updates to
// typed subscribers.
//
// Grounded in the teacher's pkg/state, but restructured: the teacher's
// State is a Postgres-backed table of applied migrations, while this store
// is a pure in-process cache — orapgsync's migration history lives in the
// destination catalog itself (re-read by pkg/verify), not in a side table.
package store

import (
	"sync"
)

// Side identifies which database a stored artifact came from.
type Side int

const (
	Source Side = iota
	Target
)

func (s Side) String() string {
	if s == Target {
		return "target"
	}
	return "source"
}

// Kind identifies the object kind of a stored artifact. Kinds are opaque
// strings so that new stages can introduce new keys without modifying this
// package.
type Kind string

// The kinds the migration pipeline's built-in stages read and write.
// Stages outside this package are free to mint their own Kind values;
// these are just the ones the standard stage list in cmd/stages.go
// shares.
const (
	KindSchemas     Kind = "schemas"
	KindObjectTypes Kind = "object-types"
	KindTables      Kind = "tables"
	KindConstraints Kind = "constraints"
	KindFKIndexes   Kind = "fk-indexes"
	KindViewStubs   Kind = "view-stubs"
	KindViews       Kind = "views"
	KindRoutineStubs Kind = "routine-stubs"
	KindRoutines    Kind = "routines"
	KindPackages    Kind = "packages"
	KindVerification Kind = "verification"
)

// Key addresses a single slot in the store.
type Key struct {
	Side Side
	Kind Kind
}

// Observer is notified synchronously after a successful Put, once Put has
// released the entry's lock. An Observer returns nothing; a panic in one is
// recovered and passed to the store's onError, and it neither rolls back
// the write nor stops the remaining observers.
type Observer func(key Key, value any)

// entry pairs a stored value with its own mutex so puts to different keys
// never contend, while puts to the same key serialize against concurrent
// readers of that key.
type entry struct {
	mu    sync.RWMutex
	value any
	set   bool
}

// Store is safe for concurrent use: many concurrent readers, at most one
// writer per key at a time.
type Store struct {
	mu        sync.Mutex // guards entries and subscribers maps themselves
	entries   map[Key]*entry
	observers map[Kind][]Observer
	onError   func(key Key, err any)
}

// New constructs an empty Store. onError, if non-nil, is called whenever an
// Observer panics; it is the store's only way of surfacing a swallowed
// subscriber failure (cmd/migrate.go passes a function that prints a
// pterm warning).
func New(onError func(key Key, err any)) *Store {
	return &Store{
		entries:   make(map[Key]*entry),
		observers: make(map[Kind][]Observer),
		onError:   onError,
	}
}

func (s *Store) entryFor(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Put stores value at key and, before returning, synchronously invokes every
// subscriber registered for key.Kind. The store makes no copy: Get hands
// back the stored value itself, so a caller that mutates what it read
// (a slice's elements, a map) changes what every later reader sees. The
// model package's value types carry no mutable shared state once
// constructed.
func (s *Store) Put(key Key, value any) {
	e := s.entryFor(key)
	e.mu.Lock()
	e.value = value
	e.set = true
	e.mu.Unlock()

	s.mu.Lock()
	obs := append([]Observer(nil), s.observers[key.Kind]...)
	s.mu.Unlock()

	for _, o := range obs {
		s.invoke(key, value, o)
	}
}

func (s *Store) invoke(key Key, value any, o Observer) {
	defer func() {
		if r := recover(); r != nil && s.onError != nil {
			s.onError(key, r)
		}
	}()
	o(key, value)
}

// Get returns the most recently Put value for key, and whether a value was
// ever stored.
func (s *Store) Get(key Key) (any, bool) {
	e := s.entryFor(key)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value, e.set
}

// Subscribe registers observer for every future Put to any key of kind. It
// does not fire for values already present in the store.
func (s *Store) Subscribe(kind Kind, observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[kind] = append(s.observers[kind], observer)
}

// Keys returns every Kind that currently has a stored value for side. Used
// by pipeline stages to decide whether an upstream stage's output is
// available before running ("if absent, skip with a warning").
func (s *Store) Keys(side Side) []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kinds []Kind
	for k, e := range s.entries {
		if k.Side != side {
			continue
		}
		e.mu.RLock()
		set := e.set
		e.mu.RUnlock()
		if set {
			kinds = append(kinds, k.Kind)
		}
	}
	return kinds
}
