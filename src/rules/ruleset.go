package rules

import "strings"

/*
	RuleSet is a changeable set of birth/survival rules for 2-state cellular automata.
	The rules can be set from a string in the S/B ("23/3") or B{list}/S{list} ("B3/S23") formats
	and are always printed back in the canonical B/S form.
	Use Get to determine the next state of a cell from its current state and live neighbor count.
*/

// Type selects one half of the rule table.
type Type int

const (
	Birth Type = iota
	Survival
)

// MaxNeighbors is the largest live neighbor count in a Moore neighborhood.
const MaxNeighbors = 8

// Default is the rule string of Conway's Game of Life.
const Default = "B3/S23"

type RuleSet struct {
	rules [2][MaxNeighbors + 1]bool
	str   *string // cached canonical string, nil when stale
}

// New returns a RuleSet with every rule set to false.
func New() *RuleSet {
	return &RuleSet{}
}

// Parse returns a RuleSet built from str, see SetFromString.
func Parse(str string) *RuleSet {
	r := New()
	r.SetFromString(str)
	return r
}

//SetFromString clears the table and scans str from left to right:
//'B'/'b' selects the birth rules, 'S'/'s' the survival rules, '/' or '\' toggles
//between them and a digit 0-8 enables that neighbor count for the current type.
//Scanning starts on the survival rules, so "23/3" means B3/S23.
//Any other character is skipped; the number of skipped characters is returned.
//Garbage input is never rejected, it simply yields whatever table the scan produced
//(an empty or unparseable string gives an all-false table).
func (r *RuleSet) SetFromString(str string) (ignored int) {
	r.Clear()
	t := Survival
	for _, c := range str {
		switch {
		case c == 'B' || c == 'b':
			t = Birth
		case c == 'S' || c == 's':
			t = Survival
		case c == '/' || c == '\\':
			t = 1 - t
		case c >= '0' && c <= '0'+MaxNeighbors:
			r.rules[t][c-'0'] = true
		default:
			ignored++
		}
	}
	return ignored
}

// String returns the rules in the canonical "B<digits>/S<digits>" form.
func (r *RuleSet) String() string {
	if r.str == nil {
		var b strings.Builder
		b.WriteByte('B')
		r.writeDigits(&b, Birth)
		b.WriteString("/S")
		r.writeDigits(&b, Survival)
		s := b.String()
		r.str = &s
	}
	return *r.str
}

func (r *RuleSet) writeDigits(b *strings.Builder, t Type) {
	for count, on := range r.rules[t] {
		if on {
			b.WriteByte(byte('0' + count))
		}
	}
}

// Get reports whether a cell lives in the next generation.
// alive selects the survival rules, otherwise the birth rules are used.
// count must be in [0, MaxNeighbors].
func (r *RuleSet) Get(alive bool, count int) bool {
	if alive {
		return r.rules[Survival][count]
	}
	return r.rules[Birth][count]
}

// Rule returns a single table entry.
func (r *RuleSet) Rule(t Type, count int) bool {
	return r.rules[t][count]
}

// SetRule changes a single table entry.
func (r *RuleSet) SetRule(t Type, count int, state bool) {
	r.rules[t][count] = state
	r.str = nil
}

// Clear sets every rule to false.
func (r *RuleSet) Clear() {
	r.rules = [2][MaxNeighbors + 1]bool{}
	r.str = nil
}

// Empty reports whether no rule is set at all.
func (r *RuleSet) Empty() bool {
	return r.rules == [2][MaxNeighbors + 1]bool{}
}

func (r *RuleSet) Equal(o *RuleSet) bool {
	return r.rules == o.rules
}
