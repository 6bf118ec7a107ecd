// Package drill runs a rotation session in a terminal.
package drill

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"fc-faces/internal/auth"
	"fc-faces/internal/roster"
	"fc-faces/internal/rotation"
)

const helpText = "k know · l still learning · n next · p previous · f flip · r restart · s shortlist · q quit"

type Driver struct {
	scheduler *rotation.Scheduler
	session   *auth.Session
	in        *bufio.Scanner
	out       io.Writer
	flipped   bool
}

func NewDriver(scheduler *rotation.Scheduler, session *auth.Session, in io.Reader, out io.Writer) *Driver {
	if session == nil {
		session = auth.NewSession()
	}
	return &Driver{
		scheduler: scheduler,
		session:   session,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run reads one command per line until q, EOF or ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	if d.session.ShowHintOnce("controls") {
		fmt.Fprintln(d.out, helpText)
	}
	d.render(d.scheduler.Snapshot())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(d.out, "> ")
		if !d.in.Scan() {
			fmt.Fprintln(d.out)
			return d.in.Err()
		}

		cmd := strings.ToLower(strings.TrimSpace(d.in.Text()))
		if cmd == "" {
			continue
		}

		var snap rotation.Snapshot
		switch cmd[0] {
		case 'k':
			snap = d.commit(rotation.KindKnow)
		case 'l':
			snap = d.commit(rotation.KindLearning)
		case 'n':
			snap = d.scheduler.Next()
		case 'p':
			snap = d.scheduler.Previous()
		case 'r':
			snap = d.scheduler.Restart()
		case 's':
			current := d.scheduler.Snapshot()
			snap = d.scheduler.SetShortlistEnabled(!current.ShortlistEnabled)
			if snap.ShortlistEnabled {
				fmt.Fprintln(d.out, "Shortlist on.")
			} else {
				fmt.Fprintln(d.out, "Shortlist off.")
			}
		case 'f':
			d.flipped = !d.flipped
			d.render(d.scheduler.Snapshot())
			continue
		case 'q':
			return nil
		default:
			fmt.Fprintln(d.out, helpText)
			continue
		}

		d.flipped = false
		d.render(snap)
	}
}

func (d *Driver) commit(kind rotation.Kind) rotation.Snapshot {
	var ok bool
	switch kind {
	case rotation.KindKnow:
		_, ok = d.scheduler.Know()
	case rotation.KindLearning:
		_, ok = d.scheduler.Learning()
	}
	if ok {
		d.scheduler.Flush()
	}
	return d.scheduler.Snapshot()
}

func (d *Driver) render(snap rotation.Snapshot) {
	if snap.State == rotation.StateComplete {
		if snap.Total == 0 {
			fmt.Fprintln(d.out, "No one to learn here. Press s to toggle the shortlist or q to quit.")
			return
		}
		fmt.Fprintf(d.out, "You know all %d faces! Press r to start over or q to quit.\n", snap.Total)
		return
	}

	fmt.Fprintf(d.out, "\n[%d left of %d]\n", snap.Remaining, snap.Total)
	if snap.Current == nil {
		return
	}
	if d.flipped {
		writeBack(d.out, *snap.Current)
		return
	}
	writeFront(d.out, *snap.Current)
}

func writeFront(w io.Writer, p roster.Profile) {
	fmt.Fprintf(w, "  %s\n", p.Name)
	fmt.Fprintf(w, "  %s · %s\n", p.Role, p.Team)
	if p.Office != "" {
		fmt.Fprintf(w, "  Office: %s\n", p.Office)
	}
	if p.HasTenure() {
		fmt.Fprintf(w, "  Years at FC: %d\n", p.YearsAtFC)
	}
}

func writeBack(w io.Writer, p roster.Profile) {
	fmt.Fprintf(w, "  %s\n", p.Name)
	writeField(w, "Born", p.Born)
	writeField(w, "Home country", p.HomeCountry)
	writeField(w, "Focus", p.Focus)
	writeField(w, "Lived in", strings.Join(p.LivedIn, ", "))
	writeField(w, "Interests", strings.Join(p.Interests, ", "))
	for _, fact := range p.FunFacts {
		fmt.Fprintf(w, "  * %s\n", fact)
	}
}

func writeField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, value)
}
