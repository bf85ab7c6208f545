// Package resourcemodel implements the resource refinement lattice
// (spec.md §4.6, §9 "Refinement vs inheritance"): profiles, traits, and
// concrete resources form a constraint-narrowing tree, not an OO hierarchy.
// No behavior is inherited and nothing is dispatched — this is an adjacency
// map plus value-level validation.
package resourcemodel

import (
	"errors"
	"sort"

	"github.com/chronoplan/chronoplan/internal/domain"
)

// Registry is a validated view over a project's profiles, traits, and
// resources, built once per scheduling run.
type Registry struct {
	Profiles map[string]*domain.ResourceProfile
	Traits   map[string]*domain.Trait
	Resources map[string]*domain.Resource
}

// Build validates the lattice and returns a Registry, or a joined structural
// error (R100-R104) if validation fails. Structural errors are fatal to
// scheduling per spec.md §7, so callers should stop on any returned error.
func Build(p *domain.Project) (*Registry, error) {
	reg := &Registry{
		Profiles:  p.ProfileIndex(),
		Traits:    p.TraitIndex(),
		Resources: p.ResourceIndex(),
	}

	var errs []error
	for _, prof := range p.Profiles {
		if prof.Specializes != "" {
			if _, ok := reg.Profiles[prof.Specializes]; !ok {
				errs = append(errs, &UnknownProfileError{ProfileID: prof.Specializes, OwnerID: prof.ID})
			}
		}
		for _, traitID := range prof.Traits {
			if _, ok := reg.Traits[traitID]; !ok {
				errs = append(errs, &UnknownTraitError{TraitID: traitID, OwnerID: prof.ID})
			}
		}
		if prof.Range != nil && prof.Range.Min > prof.Range.Max {
			errs = append(errs, &InvertedRangeError{OwnerID: prof.ID, Min: prof.Range.Min, Max: prof.Range.Max})
		}
	}
	for _, res := range p.Resources {
		if res.Specializes != "" {
			if _, ok := reg.Profiles[res.Specializes]; !ok {
				errs = append(errs, &UnknownProfileError{ProfileID: res.Specializes, OwnerID: res.ID})
			}
		}
	}

	if cycle := findCycle(reg.Profiles); cycle != nil {
		errs = append(errs, &SpecializationCycleError{Chain: cycle})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Narrowing check requires an acyclic lattice, so it runs only once the
	// above passes clean.
	for _, prof := range p.Profiles {
		if prof.Range == nil || prof.Specializes == "" {
			continue
		}
		parentRange, err := reg.effectiveRangeOf(prof.Specializes, map[string]bool{})
		if err != nil || parentRange == nil {
			continue
		}
		if prof.Range.Min < parentRange.Min || prof.Range.Max > parentRange.Max {
			errs = append(errs, &WidenedRangeError{ProfileID: prof.ID})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return reg, nil
}

// findCycle walks every profile's specialization chain looking for a
// repeat; it returns the offending chain (sorted start for determinism) or
// nil if the lattice is acyclic.
func findCycle(profiles map[string]*domain.ResourceProfile) []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, start := range ids {
		visited := map[string]bool{}
		cur := start
		var chain []string
		for cur != "" {
			if visited[cur] {
				return append(chain, cur)
			}
			visited[cur] = true
			chain = append(chain, cur)
			prof, ok := profiles[cur]
			if !ok {
				break
			}
			cur = prof.Specializes
		}
	}
	return nil
}
