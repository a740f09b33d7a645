package regexpnorm

import (
	"strconv"
	"unicode"

	"github.com/go-ecma/engine/jserror"
)

// captureInfo is the result of a single validating scan over the pattern:
// capture-group count (for backreference bounds) and the set of named
// groups seen, in textual order (for \k<name> forward-reference checks).
type captureInfo struct {
	groupCount  int
	namedGroups []string
	namedSet    map[string]bool
}

// scanAndValidate walks pattern once, outside character classes unless
// noted, validating the escape/quantifier/backreference/named-group forms
// spec.md §4.5 calls out. It checks \k<name> references against the named
// groups itself and returns the capture accounting Compile needs to
// validate \N references.
func scanAndValidate(pattern string, unicodeMode bool) (captureInfo, error) {
	info := captureInfo{namedSet: map[string]bool{}}
	runes := []rune(pattern)
	inClass := false
	var namedRefs []string

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes):
			n, err := validateEscape(runes, i, unicodeMode)
			if err != nil {
				return info, err
			}
			if runes[i+1] == 'k' && i+2 < len(runes) && runes[i+2] == '<' {
				namedRefs = append(namedRefs, string(runes[i+3:n]))
			}
			i = n
			continue
		case c == '[' && !inClass:
			inClass = true
		case c == ']' && inClass:
			inClass = false
		case c == '(' && !inClass:
			if isNamedGroupStart(runes, i) {
				name, end, err := parseGroupName(runes, i)
				if err != nil {
					return info, err
				}
				info.groupCount++
				info.namedGroups = append(info.namedGroups, name)
				info.namedSet[name] = true
				i = end
				continue
			}
			if isNonCapturingOrLookaround(runes, i) {
				continue
			}
			info.groupCount++
		case c == '{' && !inClass:
			end, err := validateQuantifier(runes, i)
			if err != nil {
				return info, err
			}
			if end > i {
				i = end
			}
		}
	}
	// \k<name> may refer forward, so names are checked once every group
	// has been seen; without /u and without named groups, \k is a literal.
	if unicodeMode || len(info.namedGroups) > 0 {
		for _, name := range namedRefs {
			if !info.namedSet[name] {
				return info, jserror.New(jserror.SyntaxError, "Invalid named reference \\k<%s>", name)
			}
		}
	}
	return info, nil
}

func isNonCapturingOrLookaround(runes []rune, i int) bool {
	// (?: (?= (?! (?<= (?<!
	if i+2 >= len(runes) || runes[i+1] != '?' {
		return false
	}
	switch runes[i+2] {
	case ':', '=', '!':
		return true
	case '<':
		return i+3 < len(runes) && (runes[i+3] == '=' || runes[i+3] == '!')
	}
	return false
}

func isNamedGroupStart(runes []rune, i int) bool {
	return i+2 < len(runes) && runes[i+1] == '?' && runes[i+2] == '<' &&
		!(i+3 < len(runes) && (runes[i+3] == '=' || runes[i+3] == '!'))
}

// parseGroupName parses `(?<name>` starting at runes[i]=='(' and returns
// the name plus the index of the closing '>'.
func parseGroupName(runes []rune, i int) (string, int, error) {
	j := i + 3 // skip "(?<"
	start := j
	for j < len(runes) && runes[j] != '>' {
		j++
	}
	if j >= len(runes) {
		return "", 0, jserror.New(jserror.SyntaxError, "Unterminated group name")
	}
	name := string(runes[start:j])
	if err := validateGroupName(name); err != nil {
		return "", 0, err
	}
	return name, j, nil
}

// validateGroupName requires an identifier-start/part sequence (Unicode
// letter/number plus $/_), per spec.md §4.5.
func validateGroupName(name string) error {
	if name == "" {
		return jserror.New(jserror.SyntaxError, "Empty regular expression group name")
	}
	for i, r := range name {
		ok := unicode.IsLetter(r) || r == '$' || r == '_'
		if i > 0 {
			ok = ok || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)
		}
		if !ok {
			return jserror.New(jserror.SyntaxError, "Invalid character %q in regular expression group name %q", r, name)
		}
	}
	return nil
}

// validateEscape validates the escape starting at runes[i]=='\\' and
// returns the index of its last consumed rune.
func validateEscape(runes []rune, i int, unicodeMode bool) (int, error) {
	n := runes[i+1]
	switch n {
	case 'x':
		return validateHexEscape(runes, i+1, 2)
	case 'u':
		return validateUnicodeEscape(runes, i+1, unicodeMode)
	case 'c':
		if i+2 >= len(runes) || !isASCIILetter(runes[i+2]) {
			return 0, jserror.New(jserror.SyntaxError, "Invalid \\c control escape")
		}
		return i + 2, nil
	case '0':
		// \0 is unambiguous only when not followed by a digit.
		if i+2 < len(runes) && isDigit(runes[i+2]) {
			return 0, jserror.New(jserror.SyntaxError, "Ambiguous \\0 escape followed by a digit")
		}
		return i + 1, nil
	case 'k':
		// \k<name> backreference; validated against named groups by the
		// caller once the full named-group table is known (see scanAndValidate).
		if i+2 < len(runes) && runes[i+2] == '<' {
			j := i + 3
			for j < len(runes) && runes[j] != '>' {
				j++
			}
			if j >= len(runes) {
				return 0, jserror.New(jserror.SyntaxError, "Unterminated \\k named backreference")
			}
			return j, nil
		}
		return i + 1, nil
	default:
		if isDigit(n) {
			j := i + 1
			for j+1 < len(runes) && isDigit(runes[j+1]) {
				j++
			}
			return j, nil
		}
		return i + 1, nil
	}
}

func validateHexEscape(runes []rune, pos int, width int) (int, error) {
	if pos+width >= len(runes) {
		return 0, jserror.New(jserror.SyntaxError, "Invalid hex escape: too short")
	}
	for k := 1; k <= width; k++ {
		if !isHexDigit(runes[pos+k]) {
			return 0, jserror.New(jserror.SyntaxError, "Invalid hex escape digit %q", runes[pos+k])
		}
	}
	return pos + width, nil
}

// validateUnicodeEscape handles both \uXXXX and \u{...} forms.
func validateUnicodeEscape(runes []rune, pos int, unicodeMode bool) (int, error) {
	if pos+1 < len(runes) && runes[pos+1] == '{' {
		if !unicodeMode {
			return 0, jserror.New(jserror.SyntaxError, "\\u{...} escape requires the 'u' flag")
		}
		j := pos + 2
		start := j
		for j < len(runes) && runes[j] != '}' {
			if !isHexDigit(runes[j]) {
				return 0, jserror.New(jserror.SyntaxError, "Invalid \\u{...} escape digit %q", runes[j])
			}
			j++
		}
		if j >= len(runes) || j == start {
			return 0, jserror.New(jserror.SyntaxError, "Invalid or empty \\u{...} escape")
		}
		cp, err := strconv.ParseInt(string(runes[start:j]), 16, 32)
		if err != nil || cp > 0x10FFFF {
			return 0, jserror.New(jserror.SyntaxError, "\\u{...} escape out of range")
		}
		if cp >= 0xD800 && cp <= 0xDFFF {
			return 0, jserror.New(jserror.SyntaxError, "\\u{...} escape may not target a surrogate code point under /u")
		}
		return j, nil
	}
	return validateHexEscape(runes, pos, 4)
}

// validateQuantifier validates a `{n}`, `{n,}`, or `{n,m}` form starting at
// runes[i]=='{'. Returns i unchanged (treated as a literal brace, which is
// legal outside /u) when the form doesn't parse as a quantifier.
func validateQuantifier(runes []rune, i int) (int, error) {
	j := i + 1
	start := j
	for j < len(runes) && isDigit(runes[j]) {
		j++
	}
	if j == start {
		return i, nil // not `{digits...`, treat as literal brace
	}
	minStr := string(runes[start:j])
	if j < len(runes) && runes[j] == '}' {
		return j, checkQuantifierBound(minStr, minStr)
	}
	if j < len(runes) && runes[j] == ',' {
		j++
		maxStart := j
		for j < len(runes) && isDigit(runes[j]) {
			j++
		}
		if j < len(runes) && runes[j] == '}' {
			maxStr := string(runes[maxStart:j])
			if maxStr == "" {
				return j, nil // `{n,}`
			}
			return j, checkQuantifierBound(minStr, maxStr)
		}
	}
	return i, nil
}

func checkQuantifierBound(minStr, maxStr string) error {
	min, err1 := strconv.Atoi(minStr)
	max, err2 := strconv.Atoi(maxStr)
	if err1 != nil || err2 != nil {
		return jserror.New(jserror.SyntaxError, "Malformed quantifier bound")
	}
	if min > max {
		return jserror.New(jserror.RangeError, "Quantifier range out of order: {%d,%d}", min, max)
	}
	return nil
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// validateBackreferences checks every \N numeric backreference against the
// capture count discovered by scanAndValidate.
func validateBackreferences(pattern string, groupCount int) error {
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			continue
		}
		n := runes[i+1]
		if n == '0' || !isDigit(n) {
			i++
			continue
		}
		j := i + 1
		for j+1 < len(runes) && isDigit(runes[j+1]) {
			j++
		}
		num, err := strconv.Atoi(string(runes[i+1 : j+1]))
		if err != nil {
			return jserror.New(jserror.SyntaxError, "Malformed backreference")
		}
		if num > groupCount {
			return jserror.New(jserror.SyntaxError, "Backreference \\%d exceeds capture group count %d", num, groupCount)
		}
		i = j
	}
	return nil
}
