package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapprice/internal/cli/output"
	"github.com/leapstack-labs/leapprice/internal/features"
)

// SchemaDocument is the exported form of the declared encoding schemas.
type SchemaDocument struct {
	Version string                   `yaml:"version" json:"version"`
	Target  string                   `yaml:"target" json:"target"`
	Ordinal []features.OrdinalColumn `yaml:"ordinal" json:"ordinal"`
	Nominal []string                 `yaml:"nominal" json:"nominal"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the declared ordinal and nominal schemas",
		Long: `Print the categorical encoding schemas the pipeline applies.

Ordinal columns map each label to its position in the category list.
Nominal columns are expanded into 0/1 indicator columns.
Output is YAML unless --format json is given.`,
		Example: `  leapprice schema
  leapprice schema --format json`,
		Args: cobra.NoArgs,
		RunE: runSchema,
	}
	return cmd
}

func runSchema(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}

	doc := SchemaDocument{
		Version: features.SchemaVersion,
		Target:  features.TargetColumn,
		Ordinal: features.DeclaredOrdinalSchema(),
		Nominal: features.DeclaredNominalColumns(),
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(doc)
	}

	enc := yaml.NewEncoder(r.Writer())
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return enc.Close()
}
