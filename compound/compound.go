package compound

import "github.com/wardle/pura-go/units"

// Compound is a small aggregate pairing a list of identifiers for the same
// physical substance with optional quantity information. It is not produced
// or consumed by the resolution engine itself (see package resolver); it is
// carried over from original_source/pura's Compound model as a convenience
// for callers who want to attach resolved identifiers to a quantity they
// already hold.
type Compound struct {
	Identifiers []Identifier
	Amount      *units.Amount
	Mass        *units.Mass
	Volume      *units.Volume
}

// IdentifiersOfKind returns the subset of c's identifiers matching kind, in
// their stored order.
func (c Compound) IdentifiersOfKind(kind IdentifierType) []Identifier {
	var out []Identifier
	for _, id := range c.Identifiers {
		if id.Kind == kind {
			out = append(out, id)
		}
	}
	return out
}
