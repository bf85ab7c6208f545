package resourcemodel

import "fmt"

// MultipleParentsError is R100: a resource or profile specializes more than
// one profile. The domain model represents Specializes as a single field,
// so a second parent cannot be expressed and Build never returns this
// error.
type MultipleParentsError struct{ ID string }

func (e *MultipleParentsError) Error() string {
	return fmt.Sprintf("resourcemodel: %q declares conflicting parent profiles (R100)", e.ID)
}

// SpecializationCycleError is R101: a chain of `specializes` edges that
// cycles back on itself.
type SpecializationCycleError struct{ Chain []string }

func (e *SpecializationCycleError) Error() string {
	return fmt.Sprintf("resourcemodel: specialization cycle (R101): %v", e.Chain)
}

// InvertedRangeError is R102: a declared rate range has Min > Max.
type InvertedRangeError struct {
	OwnerID  string
	Min, Max float64
}

func (e *InvertedRangeError) Error() string {
	return fmt.Sprintf("resourcemodel: %q declares inverted rate range [%.2f,%.2f] (R102)", e.OwnerID, e.Min, e.Max)
}

// WidenedRangeError reports a child profile range outside its parent's
// effective range; refinement may only narrow.
type WidenedRangeError struct {
	ProfileID string
}

func (e *WidenedRangeError) Error() string {
	return fmt.Sprintf("resourcemodel: profile %q widens its parent's rate range", e.ProfileID)
}

// UnknownTraitError is R103.
type UnknownTraitError struct{ TraitID, OwnerID string }

func (e *UnknownTraitError) Error() string {
	return fmt.Sprintf("resourcemodel: %q references unknown trait %q (R103)", e.OwnerID, e.TraitID)
}

// UnknownProfileError is R104.
type UnknownProfileError struct{ ProfileID, OwnerID string }

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("resourcemodel: %q references unknown profile %q (R104)", e.OwnerID, e.ProfileID)
}
