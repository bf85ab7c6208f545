package resourcemodel

import (
	"github.com/chronoplan/chronoplan/internal/diagnostics"
	"github.com/chronoplan/chronoplan/internal/domain"
)

// wideRangeRatio is the max/min threshold above which a cost range is
// flagged R010 "wide cost range".
const wideRangeRatio = 3.0

// traitStackWarningThreshold is the combined trait multiplier above which
// R012 fires.
const traitStackWarningThreshold = 2.0

// effectiveRangeOf computes a profile's effective rate range: the parent's
// effective range (recursively), replaced by any locally declared range
// (Build has already checked that it only narrows). Trait multipliers are
// not applied here; EffectiveRangeWithTraits applies them.
func (r *Registry) effectiveRangeOf(profileID string, visiting map[string]bool) (*domain.RateRange, error) {
	if visiting[profileID] {
		return nil, &SpecializationCycleError{Chain: []string{profileID}}
	}
	visiting[profileID] = true

	prof, ok := r.Profiles[profileID]
	if !ok {
		return nil, &UnknownProfileError{ProfileID: profileID}
	}

	var base *domain.RateRange
	if prof.Specializes != "" {
		parentRange, err := r.effectiveRangeOf(prof.Specializes, visiting)
		if err != nil {
			return nil, err
		}
		base = parentRange
	}
	if prof.Range != nil {
		base = prof.Range
	}
	return base, nil
}

// EffectiveRange is the exported entry point: the profile's own effective
// range (without trait multipliers — traits are applied by EffectiveRangeWithTraits
// so callers can see the pre-multiplier band when they need it).
func (r *Registry) EffectiveRange(profileID string) (*domain.RateRange, error) {
	return r.effectiveRangeOf(profileID, map[string]bool{})
}

// TraitMultiplier is the product of every rate_multiplier attached to the
// profile or any of its ancestors (order-independent, per spec.md §4.6).
func (r *Registry) TraitMultiplier(profileID string) float64 {
	mult := 1.0
	cur := profileID
	visited := map[string]bool{}
	for cur != "" && !visited[cur] {
		visited[cur] = true
		prof, ok := r.Profiles[cur]
		if !ok {
			break
		}
		for _, traitID := range prof.Traits {
			if trait, ok := r.Traits[traitID]; ok {
				mult *= trait.RateMultiplier
			}
		}
		cur = prof.Specializes
	}
	return mult
}

// EffectiveRangeWithTraits applies EffectiveRange then the trait multiplier
// stack, and returns diagnostics R010-R012.
func (r *Registry) EffectiveRangeWithTraits(profileID string) (*domain.RateRange, []diagnostics.Diagnostic, error) {
	base, err := r.EffectiveRange(profileID)
	if err != nil {
		return nil, nil, err
	}
	var diags []diagnostics.Diagnostic
	if base == nil {
		diags = append(diags, diagnostics.Diagnostic{
			Code: diagnostics.R011NoRateDefined, Severity: diagnostics.SeverityWarning,
			Message:    "no rate defined or inherited for profile",
			ResourceID: profileID,
		})
		return nil, diags, nil
	}

	mult := r.TraitMultiplier(profileID)
	effective := &domain.RateRange{Min: base.Min * mult, Max: base.Max * mult, Currency: base.Currency}

	if mult > traitStackWarningThreshold {
		diags = append(diags, diagnostics.Diagnostic{
			Code: diagnostics.R012TraitStackHigh, Severity: diagnostics.SeverityWarning,
			Message:    "trait multiplier stack exceeds 2.0x",
			ResourceID: profileID,
		})
	}
	if effective.Min > 0 && effective.Max/effective.Min > wideRangeRatio {
		diags = append(diags, diagnostics.Diagnostic{
			Code: diagnostics.R010WideCostRange, Severity: diagnostics.SeverityWarning,
			Message:    "cost range for profile is unusually wide",
			ResourceID: profileID,
		})
	}
	return effective, diags, nil
}

// RangeForAssignment resolves the effective rate range for one assignment:
// a concrete resource's own rate collapses to a point; otherwise it's the
// resolved profile's (or the resource's specialized profile's) effective
// range.
func (r *Registry) RangeForAssignment(a domain.Assignment) (*domain.RateRange, []diagnostics.Diagnostic, error) {
	if a.ResourceID != "" {
		res, ok := r.Resources[a.ResourceID]
		if !ok {
			return nil, nil, &UnknownProfileError{ProfileID: a.ResourceID}
		}
		if res.Rate != nil {
			diags := []diagnostics.Diagnostic{{
				Code: diagnostics.R002CollapsedRange, Severity: diagnostics.SeverityHint,
				Message:    "resource rate collapses profile range to a point",
				ResourceID: res.ID,
			}}
			return &domain.RateRange{Min: *res.Rate, Max: *res.Rate}, diags, nil
		}
		if res.Specializes != "" {
			return r.EffectiveRangeWithTraits(res.Specializes)
		}
		return nil, []diagnostics.Diagnostic{{
			Code: diagnostics.R011NoRateDefined, Severity: diagnostics.SeverityWarning,
			Message: "resource has no declared rate and no profile to inherit from", ResourceID: res.ID,
		}}, nil
	}
	return r.EffectiveRangeWithTraits(a.ProfileID)
}

// TaskCost is the best/worst/expected cost band for one task's assignment
// list under the project's cost policy (spec.md §4.6).
type TaskCost struct {
	Best, Worst, Expected float64
}

// Cost computes a task's cost range and the assignment-mixing diagnostics
// (R001/R003) that go with it. abstractWarningThreshold is the project's
// configured fraction (0..1) of abstract assignments above which R001
// escalates from hint to warning (spec.md §3 names the field; this is its
// concrete trigger).
func (r *Registry) Cost(task *domain.Task, policy domain.CostPolicy, abstractWarningThreshold float64) (TaskCost, []diagnostics.Diagnostic, error) {
	var total TaskCost
	var diags []diagnostics.Diagnostic

	hasAbstract, hasConcrete := false, false
	abstractCount := 0
	for _, a := range task.Assignments {
		if a.IsAbstract() {
			hasAbstract = true
			abstractCount++
		} else {
			hasConcrete = true
		}

		rng, rdiags, err := r.RangeForAssignment(a)
		diags = append(diags, rdiags...)
		if err != nil {
			return TaskCost{}, diags, err
		}
		if rng == nil {
			continue
		}

		qty := 1.0
		if a.IsAbstract() && a.Quantity > 0 {
			qty = float64(a.Quantity)
		}
		best := task.Effort * qty * rng.Min
		worst := task.Effort * qty * rng.Max
		expected := task.Effort * qty * rng.Midpoint()

		total.Best += best
		total.Worst += worst
		switch policy {
		case domain.CostOptimistic:
			total.Expected += best
		case domain.CostPessimistic:
			total.Expected += worst
		default:
			total.Expected += expected
		}
	}

	if hasAbstract {
		severity := diagnostics.SeverityHint
		if len(task.Assignments) > 0 && abstractWarningThreshold > 0 {
			fraction := float64(abstractCount) / float64(len(task.Assignments))
			if fraction > abstractWarningThreshold {
				severity = diagnostics.SeverityWarning
			}
		}
		diags = append(diags, diagnostics.Diagnostic{
			Code: diagnostics.R001AbstractAssignment, Severity: severity,
			Message: "task assignment includes an abstract profile, not a concrete resource", TaskID: task.ID,
		})
	}
	if hasAbstract && hasConcrete {
		diags = append(diags, diagnostics.Diagnostic{
			Code: diagnostics.R003MixedAssignment, Severity: diagnostics.SeverityHint,
			Message: "task mixes abstract and concrete assignments", TaskID: task.ID,
		})
	}
	return total, diags, nil
}
