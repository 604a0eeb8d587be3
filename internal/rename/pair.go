package rename

import "fmt"

// Pair maps a source path to the path it should be renamed to.
// Paths are opaque filesystem identifiers; no syntax validation is done.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Swap returns the pair with source and target exchanged.
func (p Pair) Swap() Pair {
	return Pair{Source: p.Target, Target: p.Source}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s -> %s", p.Source, p.Target)
}

func clonePairs(pairs []Pair) []Pair {
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	return out
}
