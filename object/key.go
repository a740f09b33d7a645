package object

import "github.com/go-ecma/engine/value"

// Key is a property key: either a string or an interned Symbol, per
// ECMA-262's PropertyKey union (spec.md §4.1 "Key-insertion ordering").
type Key struct {
	str    string
	sym    *value.Symbol
	isSym  bool
}

// StringKey builds a string-valued property key.
func StringKey(s string) Key { return Key{str: s} }

// SymbolKey builds a symbol-valued property key.
func SymbolKey(s *value.Symbol) Key { return Key{sym: s, isSym: true} }

// IsSymbol reports whether k is symbol-valued.
func (k Key) IsSymbol() bool { return k.isSym }

// String returns the string payload; callers must check IsSymbol first.
func (k Key) String() string { return k.str }

// Symbol returns the symbol payload; callers must check IsSymbol first.
func (k Key) Symbol() *value.Symbol { return k.sym }

// Private reports whether k is a private name (begins with '#'), per
// spec.md §4.1 "Private names".
func (k Key) Private() bool { return !k.isSym && len(k.str) > 0 && k.str[0] == '#' }

// arrayIndex reports whether k is a canonical array-index string key
// (ECMA-262 §6.1.7: an integer in [0, 2^32-2] with no leading zero other
// than "0" itself) and returns its numeric value.
func (k Key) arrayIndex() (uint32, bool) {
	if k.isSym || k.str == "" {
		return 0, false
	}
	s := k.str
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE {
			return 0, false
		}
	}
	return uint32(n), true
}

// ToValue renders k as the Value a host function (e.g. Reflect.ownKeys)
// would see it as.
func (k Key) ToValue() value.Value {
	if k.isSym {
		return value.SymbolValue(k.sym)
	}
	return value.String(k.str)
}
