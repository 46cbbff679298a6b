package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var housingColumns = []string{
	"Id", "MSSubClass", "MSZoning", "LotFrontage", "LotArea", "Street", "Alley",
	"LotShape", "Utilities", "Neighborhood", "OverallQual", "YearBuilt",
	"MasVnrArea", "ExterQual", "BsmtQual", "GarageYrBlt", "GarageFinish",
	"GrLivArea", "PavedDrive",
}

// HousingCSV generates n deterministic housing rows in the raw CSV layout.
// Every fifth row has no LotFrontage, every seventh has no basement, and
// GarageYrBlt is sometimes NA. With withTarget the SalePrice column is
// appended; prices grow with living area and quality.
func HousingCSV(n int, withTarget bool) string {
	zoning := []string{"RL", "RM", "FV", "RL"}
	hood := []string{"NAmes", "CollgCr", "OldTown", "Edwards", "Somerst"}
	exter := []string{"TA", "Gd", "Ex", "Fa", "TA"}
	bsmt := []string{"TA", "Gd", "Ex", "Fa"}
	finish := []string{"Unf", "RFn", "Fin"}
	shape := []string{"Reg", "IR1", "Reg", "IR2"}

	cols := housingColumns
	if withTarget {
		cols = append(append([]string(nil), cols...), "SalePrice")
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, ","))
	b.WriteByte('\n')

	for i := 0; i < n; i++ {
		qual := 3 + i%7
		area := 800 + (i*137)%1800
		lotFrontage := fmt.Sprint(50 + i%40)
		if i%5 == 4 {
			lotFrontage = "NA"
		}
		bsmtQual := bsmt[i%len(bsmt)]
		if i%7 == 6 {
			bsmtQual = "NA"
		}
		garageYr := fmt.Sprint(1960 + i%50)
		if i%6 == 5 {
			garageYr = "NA"
		}
		alley := "NA"
		if i%9 == 0 {
			alley = "Pave"
		}

		rec := []string{
			fmt.Sprint(i + 1),
			fmt.Sprint(20 + 10*(i%4)),
			zoning[i%len(zoning)],
			lotFrontage,
			fmt.Sprint(7000 + (i*311)%6000),
			"Pave",
			alley,
			shape[i%len(shape)],
			"AllPub",
			hood[i%len(hood)],
			fmt.Sprint(qual),
			fmt.Sprint(1950 + (i*7)%70),
			fmt.Sprint((i * 23) % 400),
			exter[i%len(exter)],
			bsmtQual,
			garageYr,
			finish[i%len(finish)],
			fmt.Sprint(area),
			"Y",
		}
		if withTarget {
			price := 40000 + 90*area + 15000*qual + 500*(i%11)
			rec = append(rec, fmt.Sprint(price))
		}
		b.WriteString(strings.Join(rec, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// SetupTestProject creates a temporary project with raw training and test
// CSVs under data/ and returns the project directory.
func SetupTestProject(t testing.TB, trainRows, testRows int) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, filepath.Join("data", "raw.csv"), HousingCSV(trainRows, true))
	WriteFile(t, dir, filepath.Join("data", "test.csv"), HousingCSV(testRows, false))
	return dir
}
