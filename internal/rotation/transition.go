package rotation

import "fc-faces/internal/roster"

type Kind int

const (
	KindKnow Kind = iota + 1
	KindLearning
)

func (k Kind) String() string {
	switch k {
	case KindKnow:
		return "know"
	case KindLearning:
		return "learning"
	default:
		return "unknown"
	}
}

// Transition is a mutation recorded for the current card but not yet applied.
type Transition struct {
	Kind       Kind
	ProfileID  string
	Generation uint64
}

// BeginTransition records intent to apply kind to the current card. It
// replaces any earlier pending transition and reports false when there is no
// current card.
func (e *Engine) BeginTransition(kind Kind) (Transition, bool) {
	current, ok := e.Current()
	if !ok || (kind != KindKnow && kind != KindLearning) {
		return Transition{}, false
	}
	t := Transition{Kind: kind, ProfileID: current.ID, Generation: e.generation}
	e.pending = &t
	return t, true
}

// CommitTransition applies the pending transition. It returns false when
// nothing is pending or the engine has been mutated since BeginTransition.
func (e *Engine) CommitTransition() bool {
	t := e.pending
	if t == nil {
		return false
	}
	e.pending = nil
	if t.Generation != e.generation {
		return false
	}
	if current, ok := e.Current(); !ok || current.ID != t.ProfileID {
		return false
	}

	switch t.Kind {
	case KindKnow:
		e.Know()
	case KindLearning:
		e.Learning()
	}
	return true
}

// Pending returns the transition awaiting commit, if any.
func (e *Engine) Pending() (Transition, bool) {
	if e.pending == nil {
		return Transition{}, false
	}
	return *e.pending, true
}

// Snapshot is a point-in-time copy of the engine's observable state.
type Snapshot struct {
	State            State
	Index            int
	ActiveIDs        []string
	Remaining        int
	Total            int
	ShortlistEnabled bool
	Current          *roster.Profile
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		State:            e.State(),
		Index:            e.index,
		ActiveIDs:        roster.IDs(e.active),
		Remaining:        len(e.active),
		Total:            len(e.roster),
		ShortlistEnabled: e.shortlistEnabled,
	}
	if current, ok := e.Current(); ok {
		s.Current = &current
	}
	return s
}
