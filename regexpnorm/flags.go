package regexpnorm

import "github.com/go-ecma/engine/jserror"

// Flags is the parsed form of an ECMAScript regex flag string (spec.md
// §4.5: flag set ⊆ {g,i,m,u,y,s,d}, duplicates are a parse error).
type Flags struct {
	Global     bool
	IgnoreCase bool
	Multiline  bool
	Unicode    bool
	Sticky     bool
	DotAll     bool
	HasIndices bool
}

// ParseFlags validates and parses a flag string, rejecting unknown
// characters and duplicates.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	seen := make(map[byte]bool, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if seen[c] {
			return Flags{}, jserror.New(jserror.SyntaxError, "Duplicate regular expression flag %q", string(c))
		}
		seen[c] = true
		switch c {
		case 'g':
			f.Global = true
		case 'i':
			f.IgnoreCase = true
		case 'm':
			f.Multiline = true
		case 'u':
			f.Unicode = true
		case 'y':
			f.Sticky = true
		case 's':
			f.DotAll = true
		case 'd':
			f.HasIndices = true
		default:
			return Flags{}, jserror.New(jserror.SyntaxError, "Invalid regular expression flag %q", string(c))
		}
	}
	return f, nil
}

// String reconstitutes the canonical flag string order (dgimsuy matches
// the property order engines like V8 expose on RegExp.prototype).
func (f Flags) String() string {
	out := make([]byte, 0, 7)
	if f.HasIndices {
		out = append(out, 'd')
	}
	if f.Global {
		out = append(out, 'g')
	}
	if f.IgnoreCase {
		out = append(out, 'i')
	}
	if f.Multiline {
		out = append(out, 'm')
	}
	if f.DotAll {
		out = append(out, 's')
	}
	if f.Unicode {
		out = append(out, 'u')
	}
	if f.Sticky {
		out = append(out, 'y')
	}
	return string(out)
}
