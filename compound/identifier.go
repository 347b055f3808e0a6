// Package compound provides the value types for a chemical compound
// identifier: a closed (kind, value, details?) triple and, peripherally, a
// compound aggregate that may carry an amount/mass/volume alongside its
// identifiers.
package compound

import (
	"fmt"
	"strings"
)

// IdentifierType is a dense, numerically stable enumeration of the chemical
// identifier schemes the resolution engine understands. New codes may be
// added compatibly; a code an older binary does not recognise decodes to
// Unspecified rather than panicking.
type IdentifierType int

// Known identifier kinds. Numeric values are part of the wire contract and
// must never be renumbered.
const (
	Unspecified IdentifierType = iota
	Custom
	SMILES
	InChI
	Molblock
	IUPACName
	Name
	CASNumber
	PubchemCID
	ChemSpiderID
	CXSMILES
	InChIKey
	XYZ
	UniprotID
	PDBID
	AminoAcidSequence
	HELM
	Title
	IsomericSMILES
)

var identifierTypeNames = map[IdentifierType]string{
	Unspecified:       "UNSPECIFIED",
	Custom:            "CUSTOM",
	SMILES:            "SMILES",
	InChI:             "INCHI",
	Molblock:          "MOLBLOCK",
	IUPACName:         "IUPAC_NAME",
	Name:              "NAME",
	CASNumber:         "CAS_NUMBER",
	PubchemCID:        "PUBCHEM_CID",
	ChemSpiderID:      "CHEMSPIDER_ID",
	CXSMILES:          "CXSMILES",
	InChIKey:          "INCHI_KEY",
	XYZ:               "XYZ",
	UniprotID:         "UNIPROT_ID",
	PDBID:             "PDB_ID",
	AminoAcidSequence: "AMINO_ACID_SEQUENCE",
	HELM:              "HELM",
	Title:             "TITLE",
	IsomericSMILES:    "ISOMERIC_SMILES",
}

// String renders the identifier kind using its stable wire name. Unknown
// values - deliberately, per the closed-enumeration forward-compatibility
// rule - render as UNSPECIFIED.
func (t IdentifierType) String() string {
	if name, ok := identifierTypeNames[t]; ok {
		return name
	}
	return identifierTypeNames[Unspecified]
}

// ParseIdentifierType maps an unrecognised or future wire code to
// Unspecified rather than failing, so older binaries degrade gracefully
// against newer wire data.
func ParseIdentifierType(code int) IdentifierType {
	if _, ok := identifierTypeNames[IdentifierType(code)]; ok {
		return IdentifierType(code)
	}
	return Unspecified
}

// nameToIdentifierType is the inverse of identifierTypeNames, built once at
// package initialization, for callers (the CLI's --output flag) that need to
// parse a kind from its stable wire name.
var nameToIdentifierType = func() map[string]IdentifierType {
	m := make(map[string]IdentifierType, len(identifierTypeNames))
	for k, v := range identifierTypeNames {
		m[v] = k
	}
	return m
}()

// ParseIdentifierTypeName looks up a kind by its stable wire name
// (case-insensitive), accepting either underscore or hyphen as a word
// separator so "pubchem-cid" and "PUBCHEM_CID" both resolve.
func ParseIdentifierTypeName(name string) (IdentifierType, bool) {
	normalized := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	t, ok := nameToIdentifierType[normalized]
	return t, ok
}

// MismatchedKindError is returned (never silently swallowed) when two
// identifiers of different kinds are compared for equality; comparing across
// kinds is a programming error, not a false result.
type MismatchedKindError struct {
	A, B IdentifierType
}

func (e *MismatchedKindError) Error() string {
	return fmt.Sprintf("compound: cannot compare identifiers of differing kind (%s != %s)", e.A, e.B)
}

// Identifier is a single (kind, value, details?) triple. Value is opaque to
// this package; its interpretation is determined entirely by Kind.
type Identifier struct {
	Kind    IdentifierType
	Value   string
	Details string
}

// New constructs an Identifier, panicking if value is empty - identifiers are
// constructed once by callers and never mutated, so an empty value can only
// be a caller bug.
func New(kind IdentifierType, value string) Identifier {
	if value == "" {
		panic("compound: identifier value must not be empty")
	}
	return Identifier{Kind: kind, Value: value}
}

// WithDetails returns a copy of id annotated with a free-form detail string.
func (id Identifier) WithDetails(details string) Identifier {
	id.Details = details
	return id
}

// Equal reports whether id and other denote the same identifier. On a kind
// mismatch it does not panic: it returns a *MismatchedKindError so callers
// can choose to propagate it, or use MustEqual, which panics with it.
func (id Identifier) Equal(other Identifier) (bool, error) {
	if id.Kind != other.Kind {
		return false, &MismatchedKindError{A: id.Kind, B: other.Kind}
	}
	return id.Value == other.Value, nil
}

// MustEqual is Equal but panics on a kind mismatch, for call sites (tests,
// in-memory agreement bookkeeping) that have already established a shared
// kind and treat a mismatch as an invariant violation.
func (id Identifier) MustEqual(other Identifier) bool {
	eq, err := id.Equal(other)
	if err != nil {
		panic(err)
	}
	return eq
}

func (id Identifier) String() string {
	if id.Details != "" {
		return fmt.Sprintf("%s:%s (%s)", id.Kind, id.Value, id.Details)
	}
	return fmt.Sprintf("%s:%s", id.Kind, id.Value)
}

// KindSet is a small set of IdentifierType, used to express desired output
// kinds and for the per-service capability intersection in package services.
type KindSet map[IdentifierType]struct{}

// NewKindSet builds a KindSet from a list, deduplicating as it goes.
func NewKindSet(kinds ...IdentifierType) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports whether kind is a member of the set.
func (s KindSet) Contains(kind IdentifierType) bool {
	_, ok := s[kind]
	return ok
}

// Intersect returns the members of s also present in other, as an unsorted
// slice (order is the range order of s, which is not deterministic; callers
// that need a stable order must sort it themselves).
func (s KindSet) Intersect(other KindSet) []IdentifierType {
	var out []IdentifierType
	for k := range s {
		if other.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}
