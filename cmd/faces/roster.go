package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fc-faces/internal/roster"
)

type rosterDump struct {
	ShortlistEnabled bool             `yaml:"shortlistEnabled"`
	Total            int              `yaml:"total"`
	Profiles         []roster.Profile `yaml:"profiles"`
}

func newRosterCmd() *cobra.Command {
	var (
		source  roster.Source
		enabled bool
	)
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print the derived roster as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			library, err := roster.OpenLibrary(source)
			if err != nil {
				return err
			}

			profiles := library.Roster(enabled)
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rosterDump{
				ShortlistEnabled: enabled,
				Total:            len(profiles),
				Profiles:         profiles,
			}); err != nil {
				return fmt.Errorf("encode roster: %w", err)
			}
			return enc.Close()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&source.CatalogPath, "catalog", "", "employee catalog YAML")
	flags.StringVar(&source.ShortlistPath, "shortlist", "", "shortlist YAML")
	flags.StringSliceVar(&source.Denylist, "deny", nil, "profile ids to leave out")
	flags.BoolVar(&enabled, "enabled", false, "apply the shortlist")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
