// Package cir implements the Service interface against the NIH Chemical
// Identifier Resolver (CIR). original_source/pura/resolvers.py imports CIR
// as a default peer of PubChem (resolve_names defaults to [PubChem(), CIR()])
// but its adapter source was not retrieved into the example pack; this
// adapter is built against CIR's documented resolver contract in the same
// shape as the PubChem adapter (services/pubchem), against the abstract
// services.Service interface.
package cir

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/services"
	"go.uber.org/zap"
)

// APIBase is CIR's structure resolver base URL.
const APIBase = "https://cactus.nci.nih.gov/chemical/structure"

// supportedInput lists the input kinds CIR accepts directly as a
// "structure identifier" path segment; CIR does not require a namespace
// the way PubChem does; it infers the kind of the identifier it is given.
var supportedInput = compound.NewKindSet(
	compound.Name,
	compound.SMILES,
	compound.InChI,
	compound.InChIKey,
	compound.CASNumber,
)

// outputRepresentation maps a supported output kind to CIR's representation
// name, sent as the last path segment of the request URL.
var outputRepresentation = map[compound.IdentifierType]string{
	compound.SMILES:    "smiles",
	compound.InChI:     "stdinchi",
	compound.InChIKey:  "stdinchikey",
	compound.IUPACName: "iupac_name",
	compound.Name:      "names",
	compound.CASNumber: "cas_number",
}

var representationKind = func() map[string]compound.IdentifierType {
	m := make(map[string]compound.IdentifierType, len(outputRepresentation))
	for kind, rep := range outputRepresentation {
		m[rep] = kind
	}
	return m
}()

func init() {
	services.Register("cir", func(config map[string]string) (services.Service, error) {
		return New(), nil
	})
}

// Service is the CIR adapter. Immutable after construction.
type Service struct {
	apiBase string
}

var _ services.Service = (*Service)(nil)

// New constructs a CIR service.
func New() *Service {
	return &Service{apiBase: APIBase}
}

// WithBaseURL returns a copy of s pointed at an alternative base URL, for
// testing against a local server.
func (s *Service) WithBaseURL(apiBase string) *Service {
	clone := *s
	clone.apiBase = apiBase
	return &clone
}

// Name implements services.Service.
func (s *Service) Name() string { return "cir" }

// ResolveCompound implements services.Service. CIR resolves one
// representation at a time, so each desired kind is a separate outbound
// request; unlike PubChem's single multi-property call, there is no
// namespace translation step because CIR infers the input's kind.
func (s *Service) ResolveCompound(ctx context.Context, session *services.Session, input compound.Identifier, desiredKinds compound.KindSet) ([]compound.Identifier, error) {
	if !supportedInput.Contains(input.Kind) {
		return nil, services.NewConfigError(s.Name(), "%s is not a valid input identifier kind for cir", input.Kind)
	}

	var representations []string
	for kind := range desiredKinds {
		if rep, ok := outputRepresentation[kind]; ok {
			representations = append(representations, rep)
		}
	}
	if len(representations) == 0 {
		return nil, services.NewConfigError(s.Name(), "%v contains no identifier kinds valid for cir", desiredKinds)
	}

	var output []compound.Identifier
	for _, rep := range representations {
		values, err := resolveRepresentation(ctx, session, s.apiBase, s.Name(), input.Value, rep)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			output = append(output, compound.New(representationKind[rep], v))
		}
	}
	return output, nil
}

func resolveRepresentation(ctx context.Context, session *services.Session, apiBase, serviceName, identifier, representation string) ([]string, error) {
	apiURL := fmt.Sprintf("%s/%s/%s", apiBase, url.PathEscape(identifier), representation)
	session.Log.Debug("cir request", zap.String("url", apiURL))

	resp, err := session.HTTP.R().SetContext(ctx).Get(apiURL)
	if err != nil {
		return nil, services.NewTransientError(serviceName, err)
	}
	switch {
	case resp.StatusCode() == 404:
		return nil, nil // not found: clean empty result, not an error.
	case resp.StatusCode() >= 500:
		return nil, services.NewTransientError(serviceName, fmt.Errorf("cir: http %d", resp.StatusCode()))
	case resp.StatusCode() >= 400:
		return nil, services.NewHTTPClientError(serviceName, resp.StatusCode(), fmt.Errorf("cir: http %d", resp.StatusCode()))
	}

	body := strings.TrimSpace(resp.String())
	if body == "" {
		return nil, nil
	}
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}
