package rename

import "fmt"

// UndoState tells whether a run can be reversed.
type UndoState int

const (
	// NotExecuted: the operation has not started; the ledger is empty.
	NotExecuted UndoState = iota
	// NotYetReversible: execution started but did not complete. Entries
	// describe exactly the progress made and can still be reversed.
	NotYetReversible
	// Reversible: every pair was committed and the entries are complete.
	Reversible
	// Irreversible: an existing entry was overwritten. Permanent.
	Irreversible
)

func (s UndoState) String() string {
	switch s {
	case NotExecuted:
		return "not-executed"
	case NotYetReversible:
		return "partial"
	case Reversible:
		return "reversible"
	case Irreversible:
		return "irreversible"
	default:
		return fmt.Sprintf("UndoState(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s UndoState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *UndoState) UnmarshalText(text []byte) error {
	for _, candidate := range []UndoState{NotExecuted, NotYetReversible, Reversible, Irreversible} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown undo state %q", text)
}

// Ledger records where every staged entry currently lives.
//
// Entries[i] corresponds to pairs[i]: Source is the current location (the
// staging placeholder, then the final target once committed) and Target is
// the original source path.
type Ledger struct {
	State   UndoState `json:"state"`
	Entries []Pair    `json:"entries"`
}

func (l Ledger) clone() Ledger {
	return Ledger{State: l.State, Entries: clonePairs(l.Entries)}
}

func (l *Ledger) begin(capacity int) {
	l.State = NotYetReversible
	l.Entries = make([]Pair, 0, capacity)
}

// staged appends the placeholder location of a source.
func (l *Ledger) staged(temp, source string) {
	l.Entries = append(l.Entries, Pair{Source: temp, Target: source})
}

// committed points entry i at the final path actually used.
func (l *Ledger) committed(i int, final string) {
	l.Entries[i].Source = final
}

func (l *Ledger) markIrreversible() {
	l.State = Irreversible
}

func (l *Ledger) complete() {
	if l.State != Irreversible {
		l.State = Reversible
	}
}
