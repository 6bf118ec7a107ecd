package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fc-faces/internal/auth"
	"fc-faces/internal/drill"
	"fc-faces/internal/localstate"
	"fc-faces/internal/roster"
	"fc-faces/internal/rotation"
)

const remoteTimeout = 10 * time.Second

type drillOptions struct {
	catalog     string
	shortlist   string
	denylist    []string
	state       string
	remote      string
	digest      string
	shortlistOn bool
}

func newDrillCmd() *cobra.Command {
	opts := drillOptions{}
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Unlock with the shared password and drill the roster",
		Long: `Prompts for the shared password, then walks the roster one card at a time.

Failed attempts are kept in a local SQLite file; five in a row lock the
drill for fifteen minutes. With --remote the password is checked by a
running fc-faces server instead of a local digest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDrill(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.catalog, "catalog", "", "employee catalog YAML")
	flags.StringVar(&opts.shortlist, "shortlist", "", "shortlist YAML")
	flags.StringSliceVar(&opts.denylist, "deny", nil, "profile ids to leave out")
	flags.StringVar(&opts.state, "state", localstate.DefaultPath(), "SQLite file for attempt state")
	flags.StringVar(&opts.remote, "remote", "", "base URL of an fc-faces server to verify the password")
	flags.StringVar(&opts.digest, "digest", "", "bcrypt digest to verify against (default $APP_PASSWORD_HASH)")
	flags.BoolVar(&opts.shortlistOn, "shortlist-on", false, "start with the shortlist enabled")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func runDrill(ctx context.Context, opts drillOptions, in io.Reader, out io.Writer) error {
	library, err := roster.OpenLibrary(roster.Source{
		CatalogPath:   opts.catalog,
		ShortlistPath: opts.shortlist,
		Denylist:      opts.denylist,
	})
	if err != nil {
		return err
	}

	checker, err := newChecker(opts)
	if err != nil {
		return err
	}

	store, err := localstate.Open(ctx, opts.state)
	if err != nil {
		return err
	}
	defer store.Close()

	session := auth.NewSession()
	service := auth.NewService(store, checker)
	service.WithSession(session)

	if err := unlock(ctx, service, out); err != nil {
		return err
	}

	scheduler := rotation.NewScheduler(rotation.NewEngine(library, opts.shortlistOn), rotation.DefaultExitDelay)
	defer scheduler.Close()

	return drill.NewDriver(scheduler, session, in, out).Run(ctx)
}

func newChecker(opts drillOptions) (auth.PasswordChecker, error) {
	if opts.remote != "" {
		return auth.NewRemoteChecker(opts.remote, remoteTimeout)
	}

	digest := strings.TrimSpace(opts.digest)
	if digest == "" {
		digest = strings.TrimSpace(os.Getenv("APP_PASSWORD_HASH"))
	}
	if digest == "" {
		return nil, errors.New("no password digest: set APP_PASSWORD_HASH, --digest or --remote")
	}
	return auth.NewDigestChecker(digest)
}

// unlock prompts until the password is accepted or the gate locks.
func unlock(ctx context.Context, service *auth.Service, out io.Writer) error {
	status, err := service.Status(ctx)
	if err != nil {
		return err
	}
	if status.Locked() {
		return lockedMessage(out, auth.LockedOutError{Until: status.LockedUntil, Remaining: time.Until(status.LockedUntil)})
	}

	for {
		fmt.Fprint(out, "Password: ")
		password, err := readPassword()
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		err = service.Submit(ctx, string(password))
		clear(password)

		var invalid auth.InvalidCredentialsError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &invalid):
			fmt.Fprintf(out, "Incorrect password. %s remaining.\n", plural(invalid.Remaining, "attempt"))
		case errors.Is(err, auth.ErrLockedOut):
			locked, _ := auth.IsLockedOut(err)
			return lockedMessage(out, locked)
		default:
			return err
		}
	}
}

func lockedMessage(out io.Writer, locked auth.LockedOutError) error {
	fmt.Fprintf(out, "Too many failed attempts. Try again in %s.\n", plural(locked.RetryAfterMinutes(), "minute"))
	return locked
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
