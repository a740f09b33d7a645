package cps

import "strconv"

// gensym mints fresh helper identifiers, one counter per Transform call
// (see Transform), so repeated transforms of the same source don't
// collide and nested async functions within one transform pass get
// distinct hygiene tokens (spec.md §4.7: "identifier hygiene is preserved
// by generating unique helper names suffixed with a fresh token").
type gensym struct {
	n int
}

func (g *gensym) next(base string) string {
	g.n++
	return base + "$" + strconv.Itoa(g.n)
}
