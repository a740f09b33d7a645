package value

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Symbol is an interned, reference-unique Symbol primitive. Two Symbols
// are ever equal (via SameValueZero/StrictEquals, both of which compare
// pointers) only if they are the same *Symbol.
type Symbol struct {
	description string
	// token disambiguates the String() form of anonymous/duplicate-
	// description symbols; it plays no role in equality, which is always
	// by pointer identity.
	token string
}

// NewSymbol creates a fresh, never-before-seen Symbol with the given
// description (the argument to the JS `Symbol(desc)` call).
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description, token: uuid.NewString()}
}

// Description returns the symbol's description, or "" if none was given.
func (s *Symbol) Description() string { return s.description }

// String renders a debug form; it is never used for equality.
func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)#%s", s.description, s.token[:8])
}

// registry backs Symbol.for / Symbol.keyFor (ECMA-262 §20.4.2.1/2): a
// single process-wide table keyed by description string, shared across
// realms by design (the spec requires Symbol.for to be global, unlike
// every other piece of engine state which is realm-scoped).
var (
	registryMu sync.Mutex
	registry   = map[string]*Symbol{}
)

// SymbolFor implements Symbol.for(key): returns the same Symbol for the
// same key across the lifetime of the process.
func SymbolFor(key string) *Symbol {
	registryMu.Lock()
	defer registryMu.Unlock()
	if s, ok := registry[key]; ok {
		return s
	}
	s := NewSymbol(key)
	registry[key] = s
	return s
}

// SymbolKeyFor implements Symbol.keyFor(sym): the inverse of SymbolFor.
func SymbolKeyFor(s *Symbol) (string, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for k, v := range registry {
		if v == s {
			return k, true
		}
	}
	return "", false
}

// Well-known symbols (ECMA-262 §6.1.5.1), created once at package init.
var (
	SymIterator        = NewSymbol("Symbol.iterator")
	SymAsyncIterator   = NewSymbol("Symbol.asyncIterator")
	SymToPrimitive     = NewSymbol("Symbol.toPrimitive")
	SymToStringTag     = NewSymbol("Symbol.toStringTag")
	SymHasInstance     = NewSymbol("Symbol.hasInstance")
	SymIsConcatSpreadable = NewSymbol("Symbol.isConcatSpreadable")
)
