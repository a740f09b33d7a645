// Package regexpnorm implements spec.md §4.5: validating and rewriting
// ECMAScript regex source so it can be executed by
// github.com/dlclark/regexp2, the same host regex engine the teacher's own
// JS-engine dependency (dop251/goja, see DESIGN.md) uses — Go's built-in
// RE2-based regexp package cannot express backreferences, which `\N` and
// `\k<name>` require. The only source rewrite is the Kelvin-sign guard in
// rewrite.go; character classes are passed to regexp2 unchanged.
package regexpnorm

import (
	"github.com/dlclark/regexp2"

	"github.com/go-ecma/engine/jserror"
)

// Regexp is a validated, host-compiled ECMAScript regular expression plus
// enough bookkeeping to implement exec/test's lastIndex contract (spec.md
// §4.5).
type Regexp struct {
	re         *regexp2.Regexp
	source     string
	flags      Flags
	groupCount int
	groupNames []string
	lastIndex  int
}

// Compile validates source/flagStr per spec.md §4.5 and compiles the
// rewritten pattern against regexp2.
func Compile(source, flagStr string) (*Regexp, error) {
	flags, err := ParseFlags(flagStr)
	if err != nil {
		return nil, err
	}

	info, err := scanAndValidate(source, flags.Unicode)
	if err != nil {
		return nil, err
	}
	if err := validateBackreferences(source, info.groupCount); err != nil {
		return nil, err
	}

	hostPattern := rewriteForHost(source, flags)

	opts := regexp2.ECMAScript
	if flags.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if flags.Multiline {
		opts |= regexp2.Multiline
	}
	if flags.DotAll {
		opts |= regexp2.Singleline // regexp2's "Singleline" is RegexOptions' dot-matches-all
	}

	re, err := regexp2.Compile(hostPattern, opts)
	if err != nil {
		return nil, jserror.New(jserror.SyntaxError, "Invalid regular expression /%s/%s: %v", source, flagStr, err)
	}

	return &Regexp{
		re:         re,
		source:     source,
		flags:      flags,
		groupCount: info.groupCount,
		groupNames: info.namedGroups,
	}, nil
}

// Source returns the original, unrewritten pattern text.
func (r *Regexp) Source() string { return r.source }

// Flags returns the parsed flag set.
func (r *Regexp) Flags() Flags { return r.flags }

// FlagString reconstitutes the canonical flag string.
func (r *Regexp) FlagString() string { return r.flags.String() }

// GroupCount returns the total (named + unnamed) capture group count.
func (r *Regexp) GroupCount() int { return r.groupCount }

// LastIndex returns the current lastIndex used by Exec/Test under g/y.
func (r *Regexp) LastIndex() int { return r.lastIndex }

// SetLastIndex overrides lastIndex (JS assigns to RegExp.prototype.lastIndex
// directly).
func (r *Regexp) SetLastIndex(n int) { r.lastIndex = n }
