package features

import (
	"testing"

	"github.com/leapstack-labs/leapprice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNominal(t *testing.T) {
	in := core.Table{
		Columns: []string{"Id", "MSZoning", "Alley", "GrLivArea"},
		Rows: []core.Row{
			{"Id": 1.0, "MSZoning": "RL", "Alley": nil, "GrLivArea": 1000.0},
			{"Id": 2.0, "MSZoning": "RM", "Alley": "Pave", "GrLivArea": 1200.0},
			{"Id": 3.0, "MSZoning": "RL", "Alley": "Grvl", "GrLivArea": 900.0},
		},
	}

	out := EncodeNominal(in, []string{"MSZoning", "Alley", "Street"})

	assert.Equal(t, []string{
		"Id", "GrLivArea",
		"MSZoning_RL", "MSZoning_RM",
		"Alley_Grvl", "Alley_None", "Alley_Pave",
	}, out.Columns)

	require.Len(t, out.Rows, 3)
	assert.Equal(t, core.Row{
		"Id": 1.0, "GrLivArea": 1000.0,
		"MSZoning_RL": 1.0, "MSZoning_RM": 0.0,
		"Alley_Grvl": 0.0, "Alley_None": 1.0, "Alley_Pave": 0.0,
	}, out.Rows[0])

	for _, r := range out.Rows {
		_, ok := r["MSZoning"]
		assert.False(t, ok, "source column must be removed")
		assert.Equal(t, 1.0, r["MSZoning_RL"].(float64)+r["MSZoning_RM"].(float64))
	}

	// input untouched
	assert.Equal(t, "RL", in.Rows[0]["MSZoning"])
}

func TestEncodeNominalVocabularyIsDataDerived(t *testing.T) {
	train := core.Table{
		Columns: []string{"Street"},
		Rows:    []core.Row{{"Street": "Pave"}, {"Street": "Grvl"}},
	}
	infer := core.Table{
		Columns: []string{"Street"},
		Rows:    []core.Row{{"Street": "Pave"}},
	}

	assert.Equal(t, []string{"Street_Grvl", "Street_Pave"}, EncodeNominal(train, []string{"Street"}).Columns)
	assert.Equal(t, []string{"Street_Pave"}, EncodeNominal(infer, []string{"Street"}).Columns)
}

func TestEncodeNominalDeterministic(t *testing.T) {
	in := core.Table{Columns: []string{"Neighborhood"}}
	for _, n := range []string{"NAmes", "CollgCr", "OldTown", "Edwards", "CollgCr", "NAmes"} {
		in.Rows = append(in.Rows, core.Row{"Neighborhood": n})
	}

	first := EncodeNominal(in, DeclaredNominalColumns())
	second := EncodeNominal(in, DeclaredNominalColumns())

	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"Neighborhood_CollgCr", "Neighborhood_Edwards", "Neighborhood_NAmes", "Neighborhood_OldTown",
	}, first.Columns)
}

func TestEncodeNominalNumericCategory(t *testing.T) {
	in := core.Table{
		Columns: []string{"MSZoning"},
		Rows:    []core.Row{{"MSZoning": 20.0}},
	}

	out := EncodeNominal(in, []string{"MSZoning"})
	assert.Equal(t, []string{"MSZoning_20"}, out.Columns)
}

func TestEncodeNominalNoPresentColumns(t *testing.T) {
	in := core.Table{
		Columns: []string{"A"},
		Rows:    []core.Row{{"A": 1.0}},
	}

	out := EncodeNominal(in, DeclaredNominalColumns())
	assert.Equal(t, in, out)
}
