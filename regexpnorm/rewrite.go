package regexpnorm

import "strings"

// kelvinSign is U+212A, which regexp2's case-insensitive matching folds to
// 'k'/'K'; ECMAScript's `/i` mode without `/u` does not, so rewriteForHost
// pins it to match only itself there (spec.md §4.5).
const kelvinSign = "K"

// rewriteForHost turns normalizer-validated ECMAScript regex source into a
// pattern regexp2 will execute with the intended semantics.
//
// regexp2 already matches over Unicode code points (runes) rather than
// UTF-16 code units, which happens to line up with `/u` semantics (where a
// surrogate pair denotes one logical character) for free. Non-`/u` source
// is, as a documented simplification (see DESIGN.md), executed the same
// way: lone surrogates round-trip through Go strings as individual runes,
// so `.` over non-BMP input behaves closer to `/u` than to classic
// per-code-unit ECMAScript. Scripts relying on splitting a surrogate pair
// without `/u` are the one case this does not reproduce.
func rewriteForHost(pattern string, flags Flags) string {
	out := pattern
	if flags.IgnoreCase && !strings.Contains(out, kelvinSign) {
		// No Kelvin sign present: nothing to guard against, skip the
		// rewrite rather than growing every pattern.
		return out
	}
	if flags.IgnoreCase && !flags.Unicode {
		// (?-i:...) is regexp2's .NET-inherited inline option-toggle
		// syntax: turn case-insensitivity off for just this literal so it
		// only ever matches the Kelvin sign itself, not ASCII k/K.
		out = strings.ReplaceAll(out, kelvinSign, "(?-i:"+kelvinSign+")")
	}
	return out
}
