package roster

import "strings"

// Filter derives a roster from the catalog. It drops departed profiles and
// denylisted ids, and optionally keeps only profiles on the shortlist.
type Filter struct {
	denylist  map[string]struct{}
	shortlist []string
}

func NewFilter(denylist []string, shortlist []string) Filter {
	deny := make(map[string]struct{}, len(denylist))
	for _, id := range denylist {
		if id = strings.TrimSpace(id); id != "" {
			deny[id] = struct{}{}
		}
	}
	return Filter{
		denylist:  deny,
		shortlist: append([]string(nil), shortlist...),
	}
}

// Apply returns a fresh slice in catalog order.
func (f Filter) Apply(catalog []Profile, shortlistEnabled bool) []Profile {
	out := make([]Profile, 0, len(catalog))
	for _, p := range catalog {
		if p.Departed() {
			continue
		}
		if _, denied := f.denylist[p.ID]; denied {
			continue
		}
		if shortlistEnabled && !MatchesShortlist(p.Name, f.shortlist) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Shortlist returns a copy of the configured shortlist names.
func (f Filter) Shortlist() []string {
	return append([]string(nil), f.shortlist...)
}
