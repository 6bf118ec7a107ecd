package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"fc-faces/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt digest for APP_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprint(out, "New password: ")
			first, err := readPassword()
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer clear(first)

			fmt.Fprint(out, "Repeat password: ")
			second, err := readPassword()
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer clear(second)

			if string(first) != string(second) {
				return errors.New("passwords do not match")
			}

			digest, err := auth.HashPassword(string(first), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, digest)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
