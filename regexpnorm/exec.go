package regexpnorm

import "github.com/go-ecma/engine/jserror"

// MatchResult mirrors the array RegExp.prototype.exec returns: numbered
// capture groups (index 0 is the whole match), the match's start index,
// the subject string, and named captures when the pattern declared any
// (spec.md §4.5).
type MatchResult struct {
	Match      string
	Groups     []string // index 0 is the full match; unmatched groups are ""
	GroupOK    []bool   // parallel to Groups: whether that group participated
	Index      int
	Input      string
	Named      map[string]string
	NamedOK    map[string]bool
}

// Test reports whether the pattern matches input, honouring and advancing
// lastIndex exactly as Exec would for `g`/`y` patterns (spec.md §4.5).
func (r *Regexp) Test(input string) (bool, error) {
	res, err := r.Exec(input)
	if err != nil {
		return false, err
	}
	return res != nil, nil
}

// Exec implements RegExp.prototype.exec's lastIndex contract: non-global,
// non-sticky patterns always search from the start and never mutate
// lastIndex; `g`/`y` patterns search starting at lastIndex, advance it past
// the match on success, and reset it to 0 on failure. `y` additionally
// requires the match begin exactly at lastIndex.
func (r *Regexp) Exec(input string) (*MatchResult, error) {
	advancing := r.flags.Global || r.flags.Sticky
	start := 0
	if advancing {
		start = r.lastIndex
	}

	runes := []rune(input)
	if start < 0 || start > len(runes) {
		if advancing {
			r.lastIndex = 0
		}
		return nil, nil
	}

	m, err := r.re.FindStringMatchStartingAt(input, runeIndexToByteIndex(input, start))
	if err != nil {
		return nil, jserror.New(jserror.Internal, "regular expression execution failed: %v", err)
	}
	if m == nil {
		if advancing {
			r.lastIndex = 0
		}
		return nil, nil
	}

	matchStart := byteIndexToRuneIndex(input, m.Index)
	if r.flags.Sticky && matchStart != start {
		r.lastIndex = 0
		return nil, nil
	}

	groups := m.Groups()
	result := &MatchResult{
		Match:   m.String(),
		Index:   matchStart,
		Input:   input,
		Groups:  make([]string, len(groups)),
		GroupOK: make([]bool, len(groups)),
	}
	for i, g := range groups {
		if len(g.Captures) == 0 {
			continue
		}
		result.Groups[i] = g.String()
		result.GroupOK[i] = true
		if g.Name != "" && !isNumericGroupName(g.Name) {
			if result.Named == nil {
				result.Named = map[string]string{}
				result.NamedOK = map[string]bool{}
			}
			result.Named[g.Name] = g.String()
			result.NamedOK[g.Name] = true
		}
	}

	if advancing {
		end := matchStart + len([]rune(m.String()))
		if end == start {
			end++ // avoid an infinite zero-width-match loop, per §22.2.7.1 step 13
		}
		r.lastIndex = end
	}

	return result, nil
}

func isNumericGroupName(name string) bool {
	for _, c := range name {
		if !isDigit(c) {
			return false
		}
	}
	return true
}

func runeIndexToByteIndex(s string, runeIdx int) int {
	i := 0
	for byteIdx := range s {
		if i == runeIdx {
			return byteIdx
		}
		i++
	}
	return len(s)
}

func byteIndexToRuneIndex(s string, byteIdx int) int {
	i := 0
	for bIdx := range s {
		if bIdx >= byteIdx {
			return i
		}
		i++
	}
	return i
}
