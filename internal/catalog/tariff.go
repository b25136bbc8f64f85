package catalog

import (
	"context"
	"errors"
	"sort"
)

var ErrTariffNotFound = errors.New("tariff not found")

// ResolveTariff returns the applicable monthly tariff line for a software at
// the given audience figure.
func (s *Service) ResolveTariff(ctx context.Context, softwareID, audience int64) (TariffLine, error) {
	if audience < 0 {
		audience = 0
	}
	lines, err := s.repo.ListTariffLines(ctx, softwareID)
	if err != nil {
		return TariffLine{}, err
	}
	return selectTariffLine(lines, audience)
}

// selectTariffLine picks the most specific bracket containing the audience.
// Candidates are ordered by audience_min descending (nulls last) then
// audience_max ascending (nulls last); the generic line with both bounds
// null sorts last and therefore only applies when no bracketed line matches.
func selectTariffLine(lines []TariffLine, audience int64) (TariffLine, error) {
	var candidates []TariffLine
	for _, l := range lines {
		if !l.Active {
			continue
		}
		if l.AudienceMin != nil && *l.AudienceMin > audience {
			continue
		}
		if l.AudienceMax != nil && *l.AudienceMax < audience {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) == 0 {
		return TariffLine{}, ErrTariffNotFound
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.AudienceMin != nil && b.AudienceMin != nil:
			if *a.AudienceMin != *b.AudienceMin {
				return *a.AudienceMin > *b.AudienceMin
			}
		case a.AudienceMin != nil:
			return true
		case b.AudienceMin != nil:
			return false
		}
		switch {
		case a.AudienceMax != nil && b.AudienceMax != nil:
			return *a.AudienceMax < *b.AudienceMax
		case a.AudienceMax != nil:
			return true
		default:
			return false
		}
	})

	return candidates[0], nil
}
