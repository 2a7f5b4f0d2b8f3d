package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cognitedata/kuiper/internal/compiler"
	"github.com/cognitedata/kuiper/internal/infer"
	"github.com/cognitedata/kuiper/internal/parser"
	"github.com/cognitedata/kuiper/internal/types"
	"github.com/spf13/cobra"
)

var (
	inferEval  string
	inferTypes []string
)

var inferCmd = &cobra.Command{
	Use:   "infer [file]",
	Short: "Statically infer the result type of a Kuiper expression",
	Long: `Parse and lower a Kuiper expression, then infer its static result
type without evaluating it.

Input types are declared with repeatable --input-type name=kind flags,
where kind is one of: any, integer, float, number, string, boolean,
array, object. Inputs with no declared type default to any.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfer,
}

func init() {
	rootCmd.AddCommand(inferCmd)
	inferCmd.Flags().StringVarP(&inferEval, "eval", "e", "", "infer this expression instead of reading a file")
	inferCmd.Flags().StringArrayVar(&inferTypes, "input-type", nil, "declare an input's static type, as name=kind (repeatable)")
}

func parseTypeKind(kind string) (types.Type, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "any":
		return types.Any(), nil
	case "integer", "int":
		return types.Integer(), nil
	case "float":
		return types.FloatT(), nil
	case "number":
		return types.Number(), nil
	case "string", "str":
		return types.StringT(), nil
	case "boolean", "bool":
		return types.Boolean(), nil
	case "array":
		return types.AnyArray(), nil
	case "object":
		return types.AnyObject(), nil
	default:
		return types.Type{}, fmt.Errorf("unrecognized type kind %q", kind)
	}
}

func runInfer(cmd *cobra.Command, args []string) error {
	source, err := readSource(inferEval, args)
	if err != nil {
		return err
	}

	inputNames := make([]string, 0, len(inferTypes))
	inputTypes := make([]types.Type, 0, len(inferTypes))
	for _, decl := range inferTypes {
		parts := strings.SplitN(decl, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("--input-type expects name=kind, got %q", decl)
		}
		t, err := parseTypeKind(parts[1])
		if err != nil {
			return fmt.Errorf("--input-type %q: %w", decl, err)
		}
		inputNames = append(inputNames, strings.TrimSpace(parts[0]))
		inputTypes = append(inputTypes, t)
	}

	expr, perrs := parser.Parse(source)
	if len(perrs) != 0 {
		for _, e := range perrs {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}
	tree, lerrs := compiler.Lower(expr, source, inputNames)
	if len(lerrs) != 0 {
		for _, e := range lerrs {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("lowering failed with %d error(s)", len(lerrs))
	}

	inf := infer.New()
	inf.Source = source
	env := infer.NewEnv(inputTypes)
	result, err := inf.Infer(tree, env)
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}
	fmt.Println(result.String())
	return nil
}
