package cir

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/services"
)

func TestCIRHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/aspirin/smiles", r.URL.Path)
		w.Write([]byte("CC(=O)OC1=CC=CC=C1C(=O)O\n"))
	}))
	defer srv.Close()

	svc := New().WithBaseURL(srv.URL)
	out, err := svc.ResolveCompound(context.Background(), services.NewSession(0, nil),
		compound.New(compound.Name, "aspirin"),
		compound.NewKindSet(compound.SMILES))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CC(=O)OC1=CC=CC=C1C(=O)O", out[0].Value)
}

func TestCIRNotFoundReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := New().WithBaseURL(srv.URL)
	out, err := svc.ResolveCompound(context.Background(), services.NewSession(0, nil),
		compound.New(compound.Name, "notachemical"),
		compound.NewKindSet(compound.SMILES))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCIRUnsupportedInputKind(t *testing.T) {
	svc := New()
	_, err := svc.ResolveCompound(context.Background(), services.NewSession(0, nil),
		compound.New(compound.HELM, "x"),
		compound.NewKindSet(compound.SMILES))
	require.Error(t, err)
	assert.True(t, services.IsClientError(err))
}
