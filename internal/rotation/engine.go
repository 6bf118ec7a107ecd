// Package rotation drives a drill session over a roster: cards the user
// knows leave the rotation, cards still being learned cycle to the back.
package rotation

import "fc-faces/internal/roster"

type State int

const (
	StateActive State = iota
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Source supplies the roster for a given shortlist setting.
type Source interface {
	Roster(shortlistEnabled bool) []roster.Profile
}

// Engine owns the working set of a session. It is not safe for concurrent
// use; wrap it in a Scheduler when callers share it.
type Engine struct {
	source           Source
	shortlistEnabled bool

	roster []roster.Profile
	active []roster.Profile
	index  int

	generation uint64
	pending    *Transition
}

func NewEngine(source Source, shortlistEnabled bool) *Engine {
	e := &Engine{source: source}
	e.SetShortlistEnabled(shortlistEnabled)
	return e
}

// Know removes the current card. Removing the last card completes the
// session.
func (e *Engine) Know() {
	if len(e.active) == 0 {
		return
	}
	e.active = append(e.active[:e.index:e.index], e.active[e.index+1:]...)
	switch {
	case len(e.active) == 0:
		e.index = 0
	case e.index >= len(e.active):
		e.index = len(e.active) - 1
	}
	e.touch()
}

// Learning keeps the current card in rotation and moves on to the next one.
func (e *Engine) Learning() {
	e.step(1)
}

func (e *Engine) Next() {
	e.step(1)
}

func (e *Engine) Previous() {
	e.step(-1)
}

func (e *Engine) step(delta int) {
	n := len(e.active)
	if n == 0 {
		return
	}
	e.index = ((e.index+delta)%n + n) % n
	e.touch()
}

// Restart puts every roster card back in its original order.
func (e *Engine) Restart() {
	e.active = append([]roster.Profile(nil), e.roster...)
	e.index = 0
	e.touch()
}

// SetShortlistEnabled recomputes the roster and restarts the session.
func (e *Engine) SetShortlistEnabled(enabled bool) {
	e.shortlistEnabled = enabled
	var profiles []roster.Profile
	if e.source != nil {
		profiles = e.source.Roster(enabled)
	}
	e.roster = dedupe(profiles)
	e.Restart()
}

// touch invalidates any transition begun before this mutation.
func (e *Engine) touch() {
	e.generation++
	e.pending = nil
}

func (e *Engine) Current() (roster.Profile, bool) {
	if len(e.active) == 0 {
		return roster.Profile{}, false
	}
	return e.active[e.index], true
}

func (e *Engine) Index() int {
	return e.index
}

func (e *Engine) ActiveSet() []roster.Profile {
	return append([]roster.Profile(nil), e.active...)
}

func (e *Engine) Roster() []roster.Profile {
	return append([]roster.Profile(nil), e.roster...)
}

func (e *Engine) Complete() bool {
	return len(e.active) == 0
}

func (e *Engine) State() State {
	if e.Complete() {
		return StateComplete
	}
	return StateActive
}

func (e *Engine) Remaining() int {
	return len(e.active)
}

func (e *Engine) Total() int {
	return len(e.roster)
}

func (e *Engine) ShortlistEnabled() bool {
	return e.shortlistEnabled
}

func (e *Engine) Generation() uint64 {
	return e.generation
}

func dedupe(profiles []roster.Profile) []roster.Profile {
	seen := make(map[string]struct{}, len(profiles))
	out := make([]roster.Profile, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
