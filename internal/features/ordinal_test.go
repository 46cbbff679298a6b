package features

import (
	"testing"

	"github.com/leapstack-labs/leapprice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeOrdinal(t *testing.T) {
	in := core.Table{
		Columns: []string{"Id", "ExterQual", "BsmtQual", "LotShape"},
		Rows: []core.Row{
			{"Id": 1.0, "ExterQual": "Gd", "BsmtQual": nil, "LotShape": "Reg"},
			{"Id": 2.0, "ExterQual": "Po", "BsmtQual": "Ex", "LotShape": nil},
			{"Id": 3.0, "ExterQual": "TA", "BsmtQual": "TA", "LotShape": "IR3"},
		},
	}

	out, err := EncodeOrdinal(in, DeclaredOrdinalSchema())
	require.NoError(t, err)

	assert.Equal(t, in.Columns, out.Columns)
	// LotShape has no "None" sentinel, so the null row is dropped
	require.Len(t, out.Rows, 2)

	assert.Equal(t, core.Row{"Id": 1.0, "ExterQual": 3.0, "BsmtQual": 0.0, "LotShape": 3.0}, out.Rows[0])
	assert.Equal(t, core.Row{"Id": 3.0, "ExterQual": 2.0, "BsmtQual": 3.0, "LotShape": 0.0}, out.Rows[1])

	// input untouched
	assert.Equal(t, "Gd", in.Rows[0]["ExterQual"])
	assert.Nil(t, in.Rows[0]["BsmtQual"])
}

func TestEncodeOrdinalNullWithoutSentinelIsDropped(t *testing.T) {
	in := core.Table{
		Columns: []string{"ExterQual"},
		Rows:    []core.Row{{"ExterQual": nil}, {}},
	}

	out, err := EncodeOrdinal(in, DeclaredOrdinalSchema())
	require.NoError(t, err)
	assert.Empty(t, out.Rows)
}

func TestEncodeOrdinalUnknownCategory(t *testing.T) {
	in := core.Table{
		Columns: []string{"ExterQual"},
		Rows:    []core.Row{{"ExterQual": "Gd"}, {"ExterQual": "Luxury"}},
	}

	_, err := EncodeOrdinal(in, DeclaredOrdinalSchema())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownCategory)

	var uc *core.UnknownCategoryError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "ExterQual", uc.Column)
	assert.Equal(t, "Luxury", uc.Value)
}

func TestEncodeOrdinalSkipsAbsentColumns(t *testing.T) {
	in := core.Table{
		Columns: []string{"GrLivArea"},
		Rows:    []core.Row{{"GrLivArea": 1500.0}},
	}

	out, err := EncodeOrdinal(in, DeclaredOrdinalSchema())
	require.NoError(t, err)
	assert.Equal(t, in.Rows, out.Rows)
}

func TestEncodeOrdinalRanksDecode(t *testing.T) {
	schema := DeclaredOrdinalSchema()
	col, _ := schema.Lookup("BsmtExposure")

	in := core.Table{Columns: []string{"BsmtExposure"}}
	for _, label := range col.Categories {
		in.Rows = append(in.Rows, core.Row{"BsmtExposure": label})
	}

	out, err := EncodeOrdinal(in, schema)
	require.NoError(t, err)

	for i, r := range out.Rows {
		decoded, err := schema.Decode("BsmtExposure", int(r["BsmtExposure"].(float64)))
		require.NoError(t, err)
		assert.Equal(t, col.Categories[i], decoded)
	}
}
