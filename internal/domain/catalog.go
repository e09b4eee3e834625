package domain

// DefaultCatalog lists the countries that ship with the game.
// Identifiers double as flag asset keys.
func DefaultCatalog() []string {
	return []string{
		"Estonia",
		"France",
		"Germany",
		"Ireland",
		"Italy",
		"Nigeria",
		"Poland",
		"Russia",
		"Spain",
		"UK",
		"US",
	}
}

// NormalizeCatalog drops blanks and duplicates while keeping order, and
// fails when too few countries remain to fill a round with distinct flags.
func NormalizeCatalog(countries []string) ([]string, error) {
	seen := make(map[string]struct{}, len(countries))
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) < CandidatesPerRound {
		return nil, ErrCatalogTooSmall
	}
	return out, nil
}
