// Package pubchem implements the Service interface against the NIH PubChem
// PUG REST API, ported behaviourally (wire URLs, fault-code classification,
// autocomplete fallback) from original_source/pura/services/pubchem.py.
package pubchem

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/services"
)

// APIBase is the PubChem PUG REST base URL.
const APIBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// AutocompleteBase is the PubChem autocomplete base URL.
const AutocompleteBase = "https://pubchem.ncbi.nlm.nih.gov/rest/autocomplete"

// inputNamespace maps a supported input identifier kind to PubChem's
// namespace string for that kind.
var inputNamespace = map[compound.IdentifierType]string{
	compound.SMILES:     "smiles",
	compound.InChI:      "InChI",
	compound.IUPACName:  "IUPACName",
	compound.InChIKey:   "InChIKey",
	compound.Name:       "name",
	compound.PubchemCID: "cid",
}

// outputProperty maps a supported output identifier kind to PubChem's
// property name for that kind.
var outputProperty = map[compound.IdentifierType]string{
	compound.SMILES:         "CanonicalSMILES",
	compound.InChI:          "InChI",
	compound.IUPACName:      "IUPACName",
	compound.InChIKey:       "InChIKey",
	compound.Title:          "Title",
	compound.PubchemCID:     "CID",
	compound.IsomericSMILES: "IsomericSMILES",
}

// propertyKind is the inverse of outputProperty, built once at package init
// rather than per-call.
var propertyKind = func() map[string]compound.IdentifierType {
	m := make(map[string]compound.IdentifierType, len(outputProperty))
	for kind, prop := range outputProperty {
		m[prop] = kind
	}
	return m
}()

// cidProperty is the property name corresponding to PUBCHEM_CID. It is part
// of every response row but must never be requested as a URL property; the
// CID comes back automatically.
var cidProperty = outputProperty[compound.PubchemCID]

// propertyAliases allows callers configuring desired properties by
// snake_case name (e.g. "molecular_weight") to be resolved to PubChem's
// CamelCase wire names. Carried over from original_source/pura's PROPERTY_MAP
// for caller convenience; the resolver core never uses it directly.
var propertyAliases = map[string]string{
	"molecular_formula": "MolecularFormula",
	"molecular_weight":  "MolecularWeight",
	"canonical_smiles":  "CanonicalSMILES",
	"isomeric_smiles":   "IsomericSMILES",
	"inchi":             "InChI",
	"inchikey":          "InChIKey",
	"iupac_name":        "IUPACName",
	"xlogp":             "XLogP",
	"exact_mass":        "ExactMass",
	"monoisotopic_mass": "MonoisotopicMass",
	"tpsa":              "TPSA",
	"complexity":        "Complexity",
	"charge":            "Charge",
}

// NormalizeProperty resolves a caller-supplied property name (possibly
// snake_case) to PubChem's wire name, falling back to the name unchanged.
func NormalizeProperty(name string) string {
	if canonical, ok := propertyAliases[name]; ok {
		return canonical
	}
	return name
}

func init() {
	services.Register("pubchem", func(config map[string]string) (services.Service, error) {
		autocomplete := config["autocomplete"] == "true"
		limit := 1
		if v, ok := config["autocomplete_limit"]; ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		return New(autocomplete, limit), nil
	})
}

// Service is the PubChem adapter. Immutable after construction.
type Service struct {
	autocomplete      bool
	autocompleteLimit int
	// apiBase and autocompleteBase default to APIBase/AutocompleteBase;
	// overridable (via WithBaseURLs) so tests can point the adapter at an
	// httptest server rather than the live PubChem endpoint.
	apiBase          string
	autocompleteBase string
}

var _ services.Service = (*Service)(nil)

// New constructs a PubChem service. When autocomplete is true and a property
// query returns no results, the adapter retries with PubChem's autocomplete
// suggestions for the input value, once per resolution.
func New(autocomplete bool, autocompleteLimit int) *Service {
	if autocompleteLimit <= 0 {
		autocompleteLimit = 1
	}
	return &Service{
		autocomplete:      autocomplete,
		autocompleteLimit: autocompleteLimit,
		apiBase:           APIBase,
		autocompleteBase:  AutocompleteBase,
	}
}

// WithBaseURLs returns a copy of s pointed at alternative API/autocomplete
// base URLs, for testing against a local server.
func (s *Service) WithBaseURLs(apiBase, autocompleteBase string) *Service {
	clone := *s
	clone.apiBase = apiBase
	clone.autocompleteBase = autocompleteBase
	return &clone
}

// Name implements services.Service.
func (s *Service) Name() string { return "pubchem" }

// nameQueue is the FIFO "try each suggestion in turn" queue used by the
// autocomplete fallback. A slice is sufficient at the scale PubChem's
// autocomplete limit permits (a handful of suggestions per input).
type nameQueue struct {
	items []string
}

func (q *nameQueue) push(v string) { q.items = append(q.items, v) }
func (q *nameQueue) empty() bool   { return len(q.items) == 0 }
func (q *nameQueue) pop() string {
	v := q.items[0]
	q.items = q.items[1:]
	return v
}

// ResolveCompound implements services.Service.
func (s *Service) ResolveCompound(ctx context.Context, session *services.Session, input compound.Identifier, desiredKinds compound.KindSet) ([]compound.Identifier, error) {
	namespace, ok := inputNamespace[input.Kind]
	if !ok {
		return nil, services.NewConfigError(s.Name(), "%s is not a valid input identifier kind for pubchem", input.Kind)
	}

	var representations []string
	seen := make(map[string]bool)
	for kind := range desiredKinds {
		prop, ok := outputProperty[kind]
		if !ok || seen[prop] {
			continue
		}
		seen[prop] = true
		representations = append(representations, prop)
	}
	if len(representations) == 0 {
		return nil, services.NewConfigError(s.Name(), "%v contains no identifier kinds valid for pubchem", desiredKinds)
	}

	var properties []string
	for _, rep := range representations {
		if rep == cidProperty {
			continue
		}
		properties = append(properties, rep)
	}
	if len(properties) == 0 {
		// Every requested representation was CID, which PubChem returns on
		// every row regardless of the requested property list - but the PUG
		// REST path requires at least one property name, so request it
		// explicitly rather than sending an empty property/ segment.
		properties = []string{cidProperty}
	}

	queue := &nameQueue{}
	queue.push(input.Value)
	autocompleteTried := false

	var output []compound.Identifier
	for !queue.empty() {
		value := queue.pop()
		rows, err := getProperties(ctx, session, s.apiBase, s.Name(), properties, value, namespace)
		if err != nil {
			if services.IsClientError(err) {
				return nil, err
			}
			if services.IsTransient(err) {
				return nil, err
			}
			// not-found: treated as empty, fall through to autocomplete check.
			rows = nil
		}

		for _, rep := range representations {
			for _, row := range rows {
				raw, present := row[rep]
				if !present || raw == nil {
					continue
				}
				if v := fmt.Sprint(raw); v != "" {
					output = append(output, compound.New(propertyKind[rep], v))
				}
			}
		}

		if len(output) == 0 && s.autocomplete && !autocompleteTried {
			autocompleteTried = true
			names, err := autocompleteNames(ctx, session, s.autocompleteBase, s.Name(), value, s.autocompleteLimit)
			if err != nil {
				if services.IsClientError(err) {
					return nil, err
				}
				if services.IsTransient(err) {
					return nil, err
				}
			}
			for _, n := range names {
				queue.push(n)
			}
		}
		if len(output) > 0 {
			break
		}
	}

	return output, nil
}

// buildPropertyPath joins the requested property names the way PubChem's
// PUG REST URL scheme requires: comma-separated, prefixed with "property/".
func buildPropertyPath(properties []string) string {
	return "property/" + strings.Join(properties, ",")
}
