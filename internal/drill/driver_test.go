package drill

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc-faces/internal/auth"
	"fc-faces/internal/roster"
	"fc-faces/internal/rotation"
)

func newScheduler(t *testing.T) *rotation.Scheduler {
	t.Helper()
	lib := roster.NewLibrary([]roster.Profile{
		{ID: "a", Name: "Ada Lovelace", Role: "Engineer", Team: "Platform", YearsAtFC: 3, Interests: []string{"poetry"}},
		{ID: "b", Name: "Grace Hopper", Role: "Admiral", Team: "Compilers"},
		{ID: "c", Name: "Niko Hernández", Role: "Designer", Team: "Brand"},
	}, roster.NewFilter(nil, []string{"niko hernandez"}))
	s := rotation.NewScheduler(rotation.NewEngine(lib, false), time.Hour)
	t.Cleanup(s.Close)
	return s
}

func run(t *testing.T, s *rotation.Scheduler, session *auth.Session, input string) string {
	t.Helper()
	var out bytes.Buffer
	d := NewDriver(s, session, strings.NewReader(input), &out)
	require.NoError(t, d.Run(context.Background()))
	return out.String()
}

func TestDriver_KnowUntilComplete(t *testing.T) {
	s := newScheduler(t)
	out := run(t, s, nil, "k\nl\nk\nk\n")

	assert.Contains(t, out, helpText)
	assert.Contains(t, out, "[3 left of 3]")
	assert.Contains(t, out, "Years at FC: 3")
	assert.Contains(t, out, "You know all 3 faces!")
	assert.Equal(t, rotation.StateComplete, s.Snapshot().State)
	assert.False(t, s.Pending())
}

func TestDriver_NavigationAndRestart(t *testing.T) {
	s := newScheduler(t)
	run(t, s, nil, "p\nk\nr\nn\n")

	snap := s.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, snap.ActiveIDs)
	assert.Equal(t, 1, snap.Index)
}

func TestDriver_ShortlistToggle(t *testing.T) {
	s := newScheduler(t)
	out := run(t, s, nil, "s\n")

	assert.Contains(t, out, "Shortlist on.")
	assert.Contains(t, out, "[1 left of 1]")
	assert.Contains(t, out, "Niko Hernández")
	assert.True(t, s.Snapshot().ShortlistEnabled)
}

func TestDriver_FlipShowsDetails(t *testing.T) {
	s := newScheduler(t)
	out := run(t, s, nil, "f\nq\nk\n")

	assert.Contains(t, out, "Interests: poetry")
	assert.Equal(t, 3, s.Snapshot().Remaining, "q stops before later commands")
}

func TestDriver_HintShownOncePerSession(t *testing.T) {
	session := auth.NewSession()
	first := run(t, newScheduler(t), session, "")
	second := run(t, newScheduler(t), session, "")

	assert.Contains(t, first, helpText)
	assert.NotContains(t, second, helpText)

	session.Login()
	assert.Contains(t, run(t, newScheduler(t), session, ""), helpText)
}

func TestDriver_UnknownCommandPrintsHelp(t *testing.T) {
	s := newScheduler(t)
	session := auth.NewSession()
	session.ShowHintOnce("controls")

	out := run(t, s, session, "x\n")
	assert.Contains(t, out, helpText)
}

func TestDriver_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDriver(newScheduler(t), nil, strings.NewReader("k\n"), &bytes.Buffer{})
	assert.ErrorIs(t, d.Run(ctx), context.Canceled)
}
