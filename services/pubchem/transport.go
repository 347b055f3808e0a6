package pubchem

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wardle/pura-go/services"
	"go.uber.org/zap"
)

// faultResponse captures both possible shapes of a PubChem PUG REST
// response: either a populated PropertyTable, or a Fault
// describing why none was returned.
type faultResponse struct {
	PropertyTable *struct {
		Properties []map[string]interface{} `json:"Properties"`
	} `json:"PropertyTable"`
	Fault *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Fault"`
}

// classifyFault maps a PubChem fault code to the engine's error taxonomy.
func classifyFault(service string, code string) error {
	switch code {
	case "PUGREST.BadRequest", "PUGREST.NotAllowed", "PUGREST.Unimplemented":
		return services.NewConfigError(service, "pubchem fault: %s", code)
	case "PUGREST.NotFound":
		return nil // not-found: caller treats as empty, not an error.
	case "PUGREST.Timeout", "PUGREST.ServerBusy", "PUGREST.ServerError", "PUGREST.Unknown":
		return services.NewTransientError(service, fmt.Errorf("pubchem fault: %s", code))
	default:
		// Unknown fault codes are treated conservatively as transient so a
		// future provider fault class does not wedge silent-mode callers
		// into a hard failure.
		return services.NewTransientError(service, fmt.Errorf("pubchem fault: %s", code))
	}
}

// getProperties issues the PUG REST property query and returns the decoded
// rows, or a classified error. A PUGREST.NotFound fault yields (nil, nil):
// not found is not an error.
func getProperties(ctx context.Context, session *services.Session, apiBase string, serviceName string, properties []string, identifier string, namespace string) ([]map[string]interface{}, error) {
	apiURL := fmt.Sprintf("%s/compound/%s/%s/JSON", apiBase, namespace, buildPropertyPath(properties))
	session.Log.Debug("pubchem request", zap.String("url", apiURL), zap.String("namespace", namespace), zap.String("identifier", identifier))

	var result faultResponse
	resp, err := session.HTTP.R().
		SetContext(ctx).
		SetFormData(map[string]string{namespace: identifier}).
		SetResult(&result).
		Post(apiURL)
	if err != nil {
		return nil, services.NewTransientError(serviceName, err)
	}
	if resp.StatusCode() >= 500 {
		return nil, services.NewTransientError(serviceName, fmt.Errorf("pubchem: http %d", resp.StatusCode()))
	}
	if resp.StatusCode() >= 400 {
		return nil, services.NewHTTPClientError(serviceName, resp.StatusCode(), fmt.Errorf("pubchem: http %d", resp.StatusCode()))
	}
	if result.Fault != nil {
		if err := classifyFault(serviceName, result.Fault.Code); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if result.PropertyTable == nil {
		return nil, nil
	}
	return result.PropertyTable.Properties, nil
}

// autocompleteResponse is PubChem's autocomplete endpoint response shape.
type autocompleteResponse struct {
	DictionaryTerms *struct {
		Compound []string `json:"compound"`
	} `json:"dictionary_terms"`
	TotalCount *int `json:"total"`
}

// autocompleteNames calls PubChem's autocomplete endpoint for alternative
// names to retry, limited to limit suggestions.
func autocompleteNames(ctx context.Context, session *services.Session, autocompleteBase string, serviceName string, identifier string, limit int) ([]string, error) {
	apiURL := fmt.Sprintf("%s/compound/%s/JSON", autocompleteBase, url.PathEscape(identifier))
	session.Log.Debug("pubchem autocomplete request", zap.String("url", apiURL), zap.String("identifier", identifier))

	var result autocompleteResponse
	resp, err := session.HTTP.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetResult(&result).
		Post(apiURL)
	if err != nil {
		return nil, services.NewTransientError(serviceName, err)
	}
	if resp.StatusCode() >= 500 {
		return nil, services.NewTransientError(serviceName, fmt.Errorf("pubchem autocomplete: http %d", resp.StatusCode()))
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.StatusCode() >= 400 {
		return nil, services.NewHTTPClientError(serviceName, resp.StatusCode(), fmt.Errorf("pubchem autocomplete: http %d", resp.StatusCode()))
	}
	if result.DictionaryTerms == nil {
		return nil, nil
	}
	return result.DictionaryTerms.Compound, nil
}
