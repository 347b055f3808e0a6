// Package chemspider implements the Service interface against the Royal
// Society of Chemistry's ChemSpider REST API. Named, alongside PubChem and
// CIR, in original_source/pura/resolvers.py's __main__ smoke test
// (services=[PubChem(), CIR(), ChemSpider()], agreement=2) but - like cir -
// its adapter source was not retrieved; built against ChemSpider's
// documented token-authenticated v1 REST surface, in the same adapter shape
// as services/pubchem and services/cir.
package chemspider

import (
	"context"
	"fmt"

	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/services"
	"go.uber.org/zap"
)

// APIBase is the ChemSpider v1 REST API base URL.
const APIBase = "https://api.rsc.org/compounds/v1"

var supportedInput = compound.NewKindSet(compound.Name, compound.SMILES, compound.InChI, compound.CASNumber)

// outputField maps a supported output kind to the field name in ChemSpider's
// "details" response.
var outputField = map[compound.IdentifierType]string{
	compound.SMILES:       "smiles",
	compound.InChI:        "inchi",
	compound.InChIKey:     "inchiKey",
	compound.ChemSpiderID: "id",
	compound.Name:         "commonName",
}

var fieldKind = func() map[string]compound.IdentifierType {
	m := make(map[string]compound.IdentifierType, len(outputField))
	for kind, field := range outputField {
		m[field] = kind
	}
	return m
}()

func init() {
	services.Register("chemspider", func(config map[string]string) (services.Service, error) {
		return New(config["api_key"]), nil
	})
}

// Service is the ChemSpider adapter. Configuration (the API key) is carried
// as a per-instance field rather than a global registry of credentials.
type Service struct {
	apiKey  string
	apiBase string
}

var _ services.Service = (*Service)(nil)

// New constructs a ChemSpider service authenticated with apiKey.
func New(apiKey string) *Service {
	return &Service{apiKey: apiKey, apiBase: APIBase}
}

// WithBaseURL returns a copy of s pointed at an alternative base URL, for
// testing against a local server.
func (s *Service) WithBaseURL(apiBase string) *Service {
	clone := *s
	clone.apiBase = apiBase
	return &clone
}

// Name implements services.Service.
func (s *Service) Name() string { return "chemspider" }

// filterResponse is ChemSpider's /filter/name response shape: a query is
// submitted, returning a query id, then resolved via /filter/{id}/results.
type filterResponse struct {
	QueryID string `json:"queryId"`
	Status  string `json:"status"`
}

type resultsResponse struct {
	Results []int `json:"results"`
}

type detailsResponse struct {
	ID         int    `json:"id"`
	SMILES     string `json:"smiles"`
	InChI      string `json:"inchi"`
	InChIKey   string `json:"inchiKey"`
	CommonName string `json:"commonName"`
}

// ResolveCompound implements services.Service.
func (s *Service) ResolveCompound(ctx context.Context, session *services.Session, input compound.Identifier, desiredKinds compound.KindSet) ([]compound.Identifier, error) {
	if !supportedInput.Contains(input.Kind) {
		return nil, services.NewConfigError(s.Name(), "%s is not a valid input identifier kind for chemspider", input.Kind)
	}
	var fields []string
	for kind := range desiredKinds {
		if field, ok := outputField[kind]; ok {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		return nil, services.NewConfigError(s.Name(), "%v contains no identifier kinds valid for chemspider", desiredKinds)
	}

	ids, err := s.filterByName(ctx, session, input.Value)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var output []compound.Identifier
	for _, id := range ids {
		details, err := s.details(ctx, session, id)
		if err != nil {
			return nil, err
		}
		for _, field := range fields {
			value := detailsField(details, field)
			if value != "" {
				output = append(output, compound.New(fieldKind[field], value))
			}
		}
	}
	return output, nil
}

func detailsField(d detailsResponse, field string) string {
	switch field {
	case "smiles":
		return d.SMILES
	case "inchi":
		return d.InChI
	case "inchiKey":
		return d.InChIKey
	case "commonName":
		return d.CommonName
	case "id":
		if d.ID != 0 {
			return fmt.Sprint(d.ID)
		}
	}
	return ""
}

func (s *Service) filterByName(ctx context.Context, session *services.Session, name string) ([]int, error) {
	apiURL := s.apiBase + "/filter/name"
	session.Log.Debug("chemspider filter request", zap.String("url", apiURL), zap.String("name", name))

	var filter filterResponse
	resp, err := session.HTTP.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetBody(map[string]string{"name": name}).
		SetResult(&filter).
		Post(apiURL)
	if err != nil {
		return nil, services.NewTransientError(s.Name(), err)
	}
	if err := classifyStatus(s.Name(), resp.StatusCode()); err != nil {
		if err == services.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	var results resultsResponse
	resultsURL := fmt.Sprintf("%s/filter/%s/results", s.apiBase, filter.QueryID)
	resp, err = session.HTTP.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetResult(&results).
		Get(resultsURL)
	if err != nil {
		return nil, services.NewTransientError(s.Name(), err)
	}
	if err := classifyStatus(s.Name(), resp.StatusCode()); err != nil {
		if err == services.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return results.Results, nil
}

func (s *Service) details(ctx context.Context, session *services.Session, id int) (detailsResponse, error) {
	apiURL := fmt.Sprintf("%s/records/%d/details", s.apiBase, id)
	var details detailsResponse
	resp, err := session.HTTP.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetResult(&details).
		Get(apiURL)
	if err != nil {
		return detailsResponse{}, services.NewTransientError(s.Name(), err)
	}
	if err := classifyStatus(s.Name(), resp.StatusCode()); err != nil && err != services.ErrNotFound {
		return detailsResponse{}, err
	}
	return details, nil
}

// classifyStatus maps an HTTP status code to the engine's error taxonomy.
// Returns services.ErrNotFound (handled by callers as "treat as empty") for
// a 404, nil for success, and a classified error otherwise.
func classifyStatus(service string, httpStatus int) error {
	switch {
	case httpStatus >= 200 && httpStatus < 300:
		return nil
	case httpStatus == 404:
		return services.ErrNotFound
	case httpStatus == 429:
		return services.NewRateLimitedError(service, fmt.Errorf("chemspider: http %d", httpStatus))
	case httpStatus >= 500:
		return services.NewTransientError(service, fmt.Errorf("chemspider: http %d", httpStatus))
	default:
		return services.NewHTTPClientError(service, httpStatus, fmt.Errorf("chemspider: http %d", httpStatus))
	}
}
