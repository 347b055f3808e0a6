package resolver

import "github.com/wardle/pura-go/compound"

// Standardizer is a pluggable, deterministic, idempotent normalization
// callback applied to every identifier a service returns before it is
// handed to the agreement algorithm. Real canonicalization (e.g. SMILES
// canonicalization) is delegated to callers who have a chemistry toolkit
// available. The default, IdentityStandardizer, is a no-op and trivially
// satisfies standardize(standardize(id)) == standardize(id).
type Standardizer func(compound.Identifier) compound.Identifier

// IdentityStandardizer returns id unchanged.
func IdentityStandardizer(id compound.Identifier) compound.Identifier { return id }
