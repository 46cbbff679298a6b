package features

import (
	"testing"

	"github.com/leapstack-labs/leapprice/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreEncodePolicy(t *testing.T) {
	in := core.Table{
		Columns: []string{"Id", "LotFrontage", "MasVnrArea", "GarageYrBlt"},
		Rows: []core.Row{
			{"Id": 1.0, "LotFrontage": nil, "MasVnrArea": 10.0, "GarageYrBlt": 2001.0},
			{"Id": 2.0, "LotFrontage": 65.0, "MasVnrArea": nil, "GarageYrBlt": nil},
			{"Id": 3.0, "LotFrontage": 80.0, "MasVnrArea": 0.0, "GarageYrBlt": nil},
		},
	}

	out, report := PreEncodePolicy.Apply(in)

	assert.Equal(t, []string{"Id", "LotFrontage", "MasVnrArea"}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, 0.0, out.Rows[0]["LotFrontage"])
	assert.Equal(t, 3.0, out.Rows[1]["Id"])
	for _, r := range out.Rows {
		_, ok := r["GarageYrBlt"]
		assert.False(t, ok)
	}

	assert.Equal(t, 3, report.RowsIn)
	assert.Equal(t, 2, report.RowsOut)
	assert.Equal(t, 1, report.RowsDropped())
	assert.Equal(t, 1, report.FilledCells)
	assert.Equal(t, []string{"GarageYrBlt"}, report.DroppedColumns)

	// input untouched
	assert.Nil(t, in.Rows[0]["LotFrontage"])
	assert.Len(t, in.Columns, 4)
}

func TestPreEncodePolicySkipsAbsentColumns(t *testing.T) {
	in := core.Table{
		Columns: []string{"A"},
		Rows:    []core.Row{{"A": nil}},
	}

	out, report := PreEncodePolicy.Apply(in)

	assert.Equal(t, in.Columns, out.Columns)
	assert.Len(t, out.Rows, 1)
	assert.Empty(t, report.DroppedColumns)
}

func TestFinalSweepLeavesNoNulls(t *testing.T) {
	in := core.Table{
		Columns: []string{"A", "B"},
		Rows: []core.Row{
			{"A": 1.0, "B": 2.0},
			{"A": nil, "B": 2.0},
			{"A": 1.0},
			{"A": 3.0, "B": "x"},
		},
	}

	out, report := FinalSweepPolicy.Apply(in)

	require.Len(t, out.Rows, 2)
	for _, r := range out.Rows {
		for _, c := range out.Columns {
			assert.False(t, r.IsNull(c))
		}
	}
	assert.Equal(t, 2, report.RowsDropped())
}

func TestNullPolicyNeverDuplicatesRows(t *testing.T) {
	in := core.Table{Columns: []string{"A"}}
	for i := 0; i < 50; i++ {
		in.Rows = append(in.Rows, core.Row{"A": float64(i)})
	}

	out, _ := FinalSweepPolicy.Apply(in)

	assert.Len(t, out.Rows, 50)
	for i, r := range out.Rows {
		assert.Equal(t, float64(i), r["A"])
	}
}
