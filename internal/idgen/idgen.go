// Package idgen provides pluggable id generation for prefab instances and
// navigation sessions.
//
// Constructors across scenekit accept a Generator, so the id strategy is a
// startup-time decision: UUIDv7 in production, fixed sequences in tests.
package idgen

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces time-sortable RFC 9562 UUID v7
// strings ("0190b2f4-5a3c-7d2e-9f10-3c4b5a6d7e8f").
//
// Panics if UUID generation fails (should never happen in practice).
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every id.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a Generator yielding prefix1, prefix2, ... .
// Deterministic; intended for tests and golden traces.
func Sequence(prefix string) Generator {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + strconv.Itoa(n)
	}
}

// Fixed returns predetermined ids in order.
//
//	gen := idgen.Fixed("inst-a", "inst-b")
//	gen() // "inst-a"
//	gen() // "inst-b"
//	gen() // panic: all ids exhausted
//
// Panics once exhausted, to catch a test that creates more instances than
// it declared.
func Fixed(ids ...string) Generator {
	var (
		mu  sync.Mutex
		idx int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if idx >= len(ids) {
			panic("idgen.Fixed: all ids exhausted")
		}
		id := ids[idx]
		idx++
		return id
	}
}

// Default is UUIDv7. Prefixed variants compose on top.
var Default Generator = UUIDv7()

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
