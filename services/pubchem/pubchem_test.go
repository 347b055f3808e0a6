package pubchem

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/services"
)

func newTestSession() *services.Session {
	return services.NewSession(0, nil)
}

// TestPubChemHappyPath covers the basic case: a single successful
// property query resolves NAME "aspirin" to its canonical SMILES.
func TestPubChemHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compound/name/property/CanonicalSMILES/JSON", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"PropertyTable": map[string]any{
				"Properties": []map[string]any{
					{"CID": 2244, "CanonicalSMILES": "CC(=O)OC1=CC=CC=C1C(=O)O"},
				},
			},
		})
	}))
	defer srv.Close()

	svc := New(false, 1).WithBaseURLs(srv.URL, srv.URL)
	session := newTestSession()

	out, err := svc.ResolveCompound(context.Background(), session,
		compound.New(compound.Name, "aspirin"),
		compound.NewKindSet(compound.SMILES))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, compound.SMILES, out[0].Kind)
	assert.Equal(t, "CC(=O)OC1=CC=CC=C1C(=O)O", out[0].Value)
}

// TestPubChemNotFoundReturnsEmpty asserts a PUGREST.NotFound fault is not an
// error: an empty slice, nil error.
func TestPubChemNotFoundReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"Fault": map[string]any{"Code": "PUGREST.NotFound", "Message": "no match"},
		})
	}))
	defer srv.Close()

	svc := New(false, 1).WithBaseURLs(srv.URL, srv.URL)
	out, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.Name, "notachemical"),
		compound.NewKindSet(compound.SMILES))
	require.NoError(t, err)
	assert.Empty(t, out)
}

// TestPubChemBadRequestIsClientError asserts a PUGREST.BadRequest fault
// classifies as a non-retriable client/config error.
func TestPubChemBadRequestIsClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"Fault": map[string]any{"Code": "PUGREST.BadRequest"},
		})
	}))
	defer srv.Close()

	svc := New(false, 1).WithBaseURLs(srv.URL, srv.URL)
	_, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.Name, "??"),
		compound.NewKindSet(compound.SMILES))
	require.Error(t, err)
	assert.True(t, services.IsClientError(err))
}

// TestPubChemServerBusyIsTransient asserts a PUGREST.ServerBusy fault
// classifies as retriable.
func TestPubChemServerBusyIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"Fault": map[string]any{"Code": "PUGREST.ServerBusy"},
		})
	}))
	defer srv.Close()

	svc := New(false, 1).WithBaseURLs(srv.URL, srv.URL)
	_, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.Name, "aspirin"),
		compound.NewKindSet(compound.SMILES))
	require.Error(t, err)
	assert.True(t, services.IsTransient(err))
}

// TestPubChemAutocompleteFallback covers the misspelling-recovery case: a
// misspelled input returns empty from the property query, autocomplete
// suggests the correct name, and the retried property query succeeds.
func TestPubChemAutocompleteFallback(t *testing.T) {
	autocompleteCalls := 0
	propertyCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/compound/name/property/CanonicalSMILES/JSON":
			propertyCalls++
			r.ParseForm()
			if r.FormValue("name") == "asprin" {
				json.NewEncoder(w).Encode(map[string]any{
					"Fault": map[string]any{"Code": "PUGREST.NotFound"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"PropertyTable": map[string]any{
					"Properties": []map[string]any{
						{"CID": 2244, "CanonicalSMILES": "CC(=O)OC1=CC=CC=C1C(=O)O"},
					},
				},
			})
		case r.URL.Path == "/compound/asprin/JSON":
			autocompleteCalls++
			json.NewEncoder(w).Encode(map[string]any{
				"dictionary_terms": map[string]any{"compound": []string{"aspirin"}},
			})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	svc := New(true, 1).WithBaseURLs(srv.URL, srv.URL)
	out, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.Name, "asprin"),
		compound.NewKindSet(compound.SMILES))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CC(=O)OC1=CC=CC=C1C(=O)O", out[0].Value)
	assert.Equal(t, 1, autocompleteCalls, "autocomplete must be tried at most once per input")
	assert.Equal(t, 2, propertyCalls)
}

func TestPubChemUnsupportedInputKindIsConfigError(t *testing.T) {
	svc := New(false, 1)
	_, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.CASNumber, "50-78-2"),
		compound.NewKindSet(compound.SMILES))
	require.Error(t, err)
	assert.True(t, services.IsClientError(err))
}

func TestPubChemEmptyDesiredKindIntersectionIsConfigError(t *testing.T) {
	svc := New(false, 1)
	_, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.Name, "aspirin"),
		compound.NewKindSet(compound.PDBID))
	require.Error(t, err)
	assert.True(t, services.IsClientError(err))
}

// TestPubChemCIDOnlyRequestUsesExplicitPropertyPath asserts that requesting
// only PubchemCID (which is otherwise implicit on every row and excluded
// from the requested property list) still issues a well-formed PUG REST
// path instead of an empty "property//JSON" segment.
func TestPubChemCIDOnlyRequestUsesExplicitPropertyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compound/name/property/CID/JSON", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"PropertyTable": map[string]any{
				"Properties": []map[string]any{{"CID": 2244}},
			},
		})
	}))
	defer srv.Close()

	svc := New(false, 1).WithBaseURLs(srv.URL, srv.URL)
	out, err := svc.ResolveCompound(context.Background(), newTestSession(),
		compound.New(compound.Name, "aspirin"),
		compound.NewKindSet(compound.PubchemCID))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, compound.PubchemCID, out[0].Kind)
	assert.Equal(t, "2244", out[0].Value)
}

// TestPubChemEmptyPropertyValueIsSkippedNotPanic asserts a property present
// in the response row but serialised as an empty string is skipped rather
// than passed to compound.New, which panics on an empty value.
func TestPubChemEmptyPropertyValueIsSkippedNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"PropertyTable": map[string]any{
				"Properties": []map[string]any{
					{"CID": 2244, "CanonicalSMILES": ""},
				},
			},
		})
	}))
	defer srv.Close()

	svc := New(false, 1).WithBaseURLs(srv.URL, srv.URL)
	var out []compound.Identifier
	var err error
	assert.NotPanics(t, func() {
		out, err = svc.ResolveCompound(context.Background(), newTestSession(),
			compound.New(compound.Name, "aspirin"),
			compound.NewKindSet(compound.SMILES))
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNormalizeProperty(t *testing.T) {
	assert.Equal(t, "MolecularWeight", NormalizeProperty("molecular_weight"))
	assert.Equal(t, "NotAnAlias", NormalizeProperty("NotAnAlias"))
}
