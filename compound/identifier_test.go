package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierTypeStringAndUnknownCode(t *testing.T) {
	assert.Equal(t, "SMILES", SMILES.String())
	assert.Equal(t, "UNSPECIFIED", IdentifierType(999).String())
	assert.Equal(t, Unspecified, ParseIdentifierType(999))
	assert.Equal(t, SMILES, ParseIdentifierType(int(SMILES)))
}

func TestIdentifierEqual(t *testing.T) {
	a := New(SMILES, "CC(=O)OC1=CC=CC=C1C(=O)O")
	b := New(SMILES, "CC(=O)OC1=CC=CC=C1C(=O)O")
	c := New(SMILES, "CCO")

	eq, err := a.Equal(b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = a.Equal(c)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestIdentifierEqualDifferingKindFailsLoudly(t *testing.T) {
	a := New(SMILES, "CCO")
	b := New(InChI, "CCO")

	_, err := a.Equal(b)
	require.Error(t, err)
	var mismatch *MismatchedKindError
	require.ErrorAs(t, err, &mismatch)

	assert.Panics(t, func() { a.MustEqual(b) })
}

func TestNewPanicsOnEmptyValue(t *testing.T) {
	assert.Panics(t, func() { New(SMILES, "") })
}

func TestParseIdentifierTypeName(t *testing.T) {
	kind, ok := ParseIdentifierTypeName("smiles")
	require.True(t, ok)
	assert.Equal(t, SMILES, kind)

	kind, ok = ParseIdentifierTypeName("inchi-key")
	require.True(t, ok)
	assert.Equal(t, InChIKey, kind)

	_, ok = ParseIdentifierTypeName("not-a-kind")
	assert.False(t, ok)
}

func TestKindSetIntersect(t *testing.T) {
	wanted := NewKindSet(SMILES, InChI, Title)
	supported := NewKindSet(SMILES, IUPACName)

	got := wanted.Intersect(supported)
	require.Len(t, got, 1)
	assert.Equal(t, SMILES, got[0])
}
