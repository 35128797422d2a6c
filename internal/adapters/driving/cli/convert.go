package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
)

var convertCmd = &cobra.Command{
	Use:   "convert [collection] [id] [field]",
	Short: "Convert document properties into typed values",
	Long: `Converts a property of a document using its type signature. The type is
taken from --type, the document's _attrs, or the type registry, in that order.
Without a field every property with a known type is converted.

Examples:
  polydb convert Polytopes.Lattice.SmoothReflexive F.3D.0000 VERTICES
  polydb convert Polytopes.Lattice.SmoothReflexive F.3D.0000 VERTICES --affine
  polydb convert Matroids.Small M.3.0 BASES --type 'Array<Set<Int>>'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runConvert,
}

var typeofCmd = &cobra.Command{
	Use:   "typeof [signature]",
	Short: "Parse and describe a type signature",
	Args:  cobra.ExactArgs(1),
	RunE:  runTypeOf,
}

var (
	convertType   string
	convertAffine bool
)

func init() {
	convertCmd.Flags().StringVarP(&convertType, "type", "t", "", "type signature overriding type resolution")
	convertCmd.Flags().BoolVarP(&convertAffine, "affine", "a", false, "drop the homogenizing first coordinate")

	rootCmd.AddCommand(convertCmd)
	typeofCmd.Annotations = map[string]string{annotationNoDatabase: "true"}
	rootCmd.AddCommand(typeofCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	svc, err := conversionService(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	collection, id := args[0], args[1]

	if len(args) == 2 {
		if convertType != "" || convertAffine {
			return fmt.Errorf("%w: --type and --affine need a field", domain.ErrInvalidInput)
		}
		doc, err := svc.ConvertDocument(ctx, collection, id)
		if err != nil {
			return wrap("convert", err)
		}
		return render(cmd, doc, func() {
			cmd.Println(heading("Document " + doc.ID))
			fields := make([]string, 0, len(doc.Fields))
			for f := range doc.Fields {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				cmd.Printf("\n%s %s\n", subtitleStyle.Render(f), mutedStyle.Render(doc.Types[f]))
				cmd.Println(fmt.Sprint(doc.Fields[f]))
			}
			if len(doc.Untyped) > 0 {
				cmd.Println()
				cmd.Println(mutedStyle.Render(fmt.Sprintf("Untyped: %v", doc.Untyped)))
			}
		})
	}

	out, err := svc.ConvertField(ctx, collection, id, args[2], driving.ConvertOptions{
		Signature: convertType,
		Affine:    convertAffine,
	})
	if err != nil {
		return wrap("convert", err)
	}
	return render(cmd, out, func() {
		cmd.Println(fmt.Sprint(out.Value))
	})
}

func runTypeOf(cmd *cobra.Command, args []string) error {
	svc, err := conversionService(cmd)
	if err != nil {
		return err
	}
	info, err := svc.ParseType(args[0])
	if err != nil {
		return wrap("typeof", err)
	}
	return render(cmd, info, func() {
		cmd.Println(field("Canonical", info.Canonical))
		cmd.Println(field("Qualified", info.Qualified))
		printTypeInfo(cmd, info, 1)
	})
}

func printTypeInfo(cmd *cobra.Command, info *driving.TypeInfo, depth int) {
	cmd.Printf("%*s%s %s\n", depth*2, "", info.Kind, mutedStyle.Render(info.Canonical))
	for _, a := range info.Args {
		printTypeInfo(cmd, a, depth+1)
	}
}
