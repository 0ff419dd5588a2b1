package model

import (
	"sort"
	"strings"
)

// Situation is an ordered collection of StateObjects, one per uid, kept
// sorted by ascending priority. The ordering matters: Compare walks the
// slice in priority order and returns the first mismatch it finds (spec
// REDESIGN FLAG "Ordered map for situations" — a hash map cannot give this
// guarantee, so Situation is backed by a slice, not a map).
type Situation struct {
	states []StateObject
	index  map[string]int
}

// NewSituation builds a Situation from an unordered list of StateObjects,
// sorting them by priority. At most one StateObject per uid is kept; a later
// entry for the same uid replaces an earlier one.
func NewSituation(states []StateObject) Situation {
	s := Situation{index: make(map[string]int, len(states))}
	for _, so := range states {
		s.Update(so)
	}
	return s
}

// Get returns the StateObject for uid and whether it was present.
func (s Situation) Get(uid string) (StateObject, bool) {
	i, ok := s.index[uid]
	if !ok {
		return StateObject{}, false
	}
	return s.states[i], true
}

// Update inserts so, or replaces the existing entry with the same uid,
// keeping the backing slice sorted by ascending priority.
func (s *Situation) Update(so StateObject) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[so.UID]; ok {
		s.states[i] = so
		s.resort()
		return
	}
	s.states = append(s.states, so)
	s.index[so.UID] = len(s.states) - 1
	s.resort()
}

func (s *Situation) resort() {
	sort.SliceStable(s.states, func(i, j int) bool {
		return s.states[i].Priority < s.states[j].Priority
	})
	for i, so := range s.states {
		s.index[so.UID] = i
	}
}

// Copy returns an independent clone of the Situation.
func (s Situation) Copy() Situation {
	states := make([]StateObject, len(s.states))
	copy(states, s.states)
	index := make(map[string]int, len(s.index))
	for k, v := range s.index {
		index[k] = v
	}
	return Situation{states: states, index: index}
}

// Equals reports whether, for every uid present in s, the other Situation
// either lacks that uid (no constraint) or carries a StateObject that is
// Equals under s's StateObject's relation. Missing uids on other are treated
// as unconstrained, not as a mismatch — this is how a small precondition
// Situation is checked against the full world Situation: call Equals on the
// precondition side.
func (s Situation) Equals(other Situation) bool {
	for _, self := range s.states {
		otherSO, ok := other.Get(self.UID)
		if ok && !self.Equals(otherSO) {
			return false
		}
	}
	return true
}

// Compare returns the first (self, other) pair, in ascending priority order,
// where self.Equals(other) fails. ok is false when no mismatch exists. A
// uid missing from other is always reported as a mismatch, paired with the
// zero StateObject — this mirrors the Python reference, where comparing
// against None always yields a mismatch.
func (s Situation) Compare(other Situation) (self, theirs StateObject, ok bool) {
	for _, so := range s.states {
		otherSO, present := other.Get(so.UID)
		if !present || !so.Equals(otherSO) {
			return so, otherSO, true
		}
	}
	return StateObject{}, StateObject{}, false
}

func (s Situation) String() string {
	parts := make([]string, len(s.states))
	for i, so := range s.states {
		parts[i] = so.String()
	}
	return strings.Join(parts, ",")
}

// Len reports the number of state objects held in the Situation.
func (s Situation) Len() int {
	return len(s.states)
}
