package agree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wardle/pura-go/compound"
)

func ids(values ...string) []compound.Identifier {
	out := make([]compound.Identifier, len(values))
	for i, v := range values {
		out[i] = compound.New(compound.SMILES, v)
	}
	return out
}

func values(ids []compound.Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Value
	}
	return out
}

func TestAgreeQuorumOneReturnsFirstNonEmpty(t *testing.T) {
	lists := [][]compound.Identifier{nil, ids("A"), ids("B")}
	out := Agree(lists, 1)
	assert.Equal(t, []string{"A"}, values(out))
}

func TestAgreeQuorumOnePreservesListOrderNotSorted(t *testing.T) {
	lists := [][]compound.Identifier{ids("Z", "A")}
	out := Agree(lists, 1)
	assert.Equal(t, []string{"Z", "A"}, values(out), "k=1 must return the list's own order, not alphabetically sorted")
}

func TestAgreeQuorumTwoAgreement(t *testing.T) {
	lists := [][]compound.Identifier{ids("A"), ids("A")}
	out := Agree(lists, 2)
	assert.Equal(t, []string{"A"}, values(out))
}

func TestAgreeQuorumTwoDisagreementReturnsEmpty(t *testing.T) {
	lists := [][]compound.Identifier{ids("A"), ids("B")}
	out := Agree(lists, 2)
	assert.Empty(t, out)
}

func TestAgreeFewerThanKNonEmptyListsReturnsEmpty(t *testing.T) {
	lists := [][]compound.Identifier{ids("A"), nil, nil}
	out := Agree(lists, 2)
	assert.Empty(t, out)
}

func TestAgreeFindsFirstNonEmptySubsetAmongMany(t *testing.T) {
	// three services: (A,B) vs (A) vs (B) - {0,1} agree on A and {0,2} on
	// B; {0,1} comes first in index order, so A wins.
	lists := [][]compound.Identifier{ids("A", "B"), ids("A"), ids("B")}
	out := Agree(lists, 2)
	assert.Equal(t, []string{"A"}, values(out))
}

func TestAgreeQuorumMonotonicity(t *testing.T) {
	lists := [][]compound.Identifier{ids("A"), ids("A"), ids("A")}
	for k := 3; k >= 2; k-- {
		higher := Agree(lists, k)
		lower := Agree(lists, k-1)
		if len(higher) > 0 {
			assert.NotEmpty(t, lower, "agree(L, %d) non-empty implies agree(L, %d) non-empty", k, k-1)
		}
	}
}

func TestAgreeDeterministic(t *testing.T) {
	lists := [][]compound.Identifier{ids("B", "A", "C"), ids("A", "C")}
	first := values(Agree(lists, 2))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, values(Agree(lists, 2)))
	}
}

func TestAgreeZeroQuorumReturnsEmpty(t *testing.T) {
	lists := [][]compound.Identifier{ids("A")}
	assert.Empty(t, Agree(lists, 0))
}
