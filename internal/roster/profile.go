// Package roster loads the employee catalog and derives the ordered roster of
// profiles eligible for a drill session.
package roster

import "strings"

// Profile is one employee card. Profiles are read from the catalog once and
// are never mutated afterwards.
type Profile struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Role        string   `yaml:"role" json:"role"`
	Team        string   `yaml:"team" json:"team"`
	YearsAtFC   int      `yaml:"yearsAtFC" json:"yearsAtFC"`
	Office      string   `yaml:"office" json:"office"`
	ImagePath   string   `yaml:"imagePath" json:"imagePath"`
	HomeCountry string   `yaml:"homeCountry,omitempty" json:"homeCountry,omitempty"`
	Focus       string   `yaml:"focus,omitempty" json:"focus,omitempty"`
	Born        string   `yaml:"born,omitempty" json:"born,omitempty"`
	LivedIn     []string `yaml:"livedIn,omitempty" json:"livedIn,omitempty"`
	Interests   []string `yaml:"interests,omitempty" json:"interests,omitempty"`
	FunFacts    []string `yaml:"funFacts,omitempty" json:"funFacts,omitempty"`
	EndDate     string   `yaml:"endDate,omitempty" json:"endDate,omitempty"`
}

// Departed reports whether the profile carries a non-empty end date.
func (p Profile) Departed() bool {
	return strings.TrimSpace(p.EndDate) != ""
}

// HasTenure reports whether YearsAtFC was filled in. Zero means unset.
func (p Profile) HasTenure() bool {
	return p.YearsAtFC > 0
}

// IDs returns the ids of profiles in order.
func IDs(profiles []Profile) []string {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids
}
