package features

import (
	"fmt"
	"slices"
)

// SchemaVersion identifies the declared ordinal schema and nominal column set.
// Bump it whenever either list changes; model artifacts record it.
const SchemaVersion = "2024.1"

// Column names with a fixed role in the pipeline.
const (
	IDColumn     = "Id"
	TargetColumn = "SalePrice"
	LogSuffix    = "_Log"
	NoneCategory = "None"
)

// LogTargetColumn is the derived column written by TransformTarget.
const LogTargetColumn = TargetColumn + LogSuffix

// OrdinalColumn declares the ranked categories of one ordinal column.
// The rank of a label is its position in Categories.
type OrdinalColumn struct {
	Name       string   `yaml:"name" json:"name"`
	Categories []string `yaml:"categories" json:"categories"`
}

// HasNone reports whether "None" is a legitimate category of the column.
func (c OrdinalColumn) HasNone() bool {
	return slices.Contains(c.Categories, NoneCategory)
}

// Rank returns the zero-based rank of label.
func (c OrdinalColumn) Rank(label string) (int, bool) {
	i := slices.Index(c.Categories, label)
	return i, i >= 0
}

// OrdinalSchema is an ordered list of ordinal column declarations.
type OrdinalSchema []OrdinalColumn

// Lookup returns the declaration for name.
func (s OrdinalSchema) Lookup(name string) (OrdinalColumn, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return OrdinalColumn{}, false
}

// Names returns the declared column names in order.
func (s OrdinalSchema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Decode maps a rank back to its label.
func (s OrdinalSchema) Decode(column string, rank int) (string, error) {
	c, ok := s.Lookup(column)
	if !ok {
		return "", fmt.Errorf("column %q is not ordinal", column)
	}
	if rank < 0 || rank >= len(c.Categories) {
		return "", fmt.Errorf("rank %d out of range for column %q (%d categories)", rank, column, len(c.Categories))
	}
	return c.Categories[rank], nil
}

// clone returns a deep copy so callers cannot edit the declared tables.
func (s OrdinalSchema) clone() OrdinalSchema {
	out := make(OrdinalSchema, len(s))
	for i, c := range s {
		out[i] = OrdinalColumn{Name: c.Name, Categories: slices.Clone(c.Categories)}
	}
	return out
}

var (
	quality     = []string{"Po", "Fa", "TA", "Gd", "Ex"}
	qualityNone = []string{"None", "Po", "Fa", "TA", "Gd", "Ex"}
	finType     = []string{"None", "Unf", "LwQ", "Rec", "BLQ", "ALQ", "GLQ"}
)

// declaredOrdinal must stay byte-for-byte compatible with trained models.
var declaredOrdinal = OrdinalSchema{
	{Name: "ExterQual", Categories: quality},
	{Name: "ExterCond", Categories: quality},
	{Name: "BsmtQual", Categories: qualityNone},
	{Name: "BsmtCond", Categories: qualityNone},
	{Name: "BsmtExposure", Categories: []string{"None", "No", "Mn", "Av", "Gd"}},
	{Name: "BsmtFinType1", Categories: finType},
	{Name: "BsmtFinType2", Categories: finType},
	{Name: "HeatingQC", Categories: quality},
	{Name: "KitchenQual", Categories: quality},
	{Name: "FireplaceQu", Categories: qualityNone},
	{Name: "GarageQual", Categories: qualityNone},
	{Name: "GarageCond", Categories: qualityNone},
	{Name: "GarageFinish", Categories: []string{"None", "Unf", "RFn", "Fin"}},
	{Name: "PoolQC", Categories: []string{"None", "Fa", "TA", "Gd", "Ex"}},
	{Name: "Fence", Categories: []string{"None", "MnWw", "MnPrv", "GdWo", "GdPrv"}},
	{Name: "LotShape", Categories: []string{"IR3", "IR2", "IR1", "Reg"}},
	{Name: "LandSlope", Categories: []string{"Gtl", "Mod", "Sev"}},
	{Name: "Utilities", Categories: []string{"NoSeWa", "AllPub"}},
	{Name: "PavedDrive", Categories: []string{"N", "P", "Y"}},
}

var declaredNominal = []string{
	"MSZoning", "Street", "Alley", "LandContour", "LotConfig",
	"Neighborhood", "Condition1", "Condition2", "BldgType", "HouseStyle",
	"RoofStyle", "RoofMatl", "Exterior1st", "Exterior2nd", "MasVnrType",
	"Foundation", "Heating", "CentralAir", "Electrical", "Functional",
	"GarageType", "MiscFeature", "SaleType", "SaleCondition",
}

// DeclaredOrdinalSchema returns a copy of the declared ordinal schema.
func DeclaredOrdinalSchema() OrdinalSchema {
	return declaredOrdinal.clone()
}

// DeclaredNominalColumns returns a copy of the declared nominal column set.
func DeclaredNominalColumns() []string {
	return slices.Clone(declaredNominal)
}

// NonFeatureColumns are never passed to the model.
func NonFeatureColumns() []string {
	return []string{IDColumn, TargetColumn, LogTargetColumn}
}
