package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cognitedata/kuiper/internal/clock"
	"github.com/cognitedata/kuiper/internal/compiler"
	"github.com/cognitedata/kuiper/internal/interp"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/parser"
	yaml "github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var (
	runEval      string
	runInputJSON string
	runInputYAML string
	runSet       []string
	runPretty    bool
	runInputs    string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Evaluate a Kuiper expression against JSON or YAML input",
	Long: `Evaluate a Kuiper expression against a single named input document.

The input document is read from --input-json or --input-yaml (mutually
exclusive), optionally patched field-by-field with repeatable --set
key=value flags, then bound to the single input name the expression was
compiled against (default: "input").`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "evaluate this expression instead of reading a file")
	runCmd.Flags().StringVar(&runInputJSON, "input-json", "", "path to a JSON input document ('-' for stdin)")
	runCmd.Flags().StringVar(&runInputYAML, "input-yaml", "", "path to a YAML input document ('-' for stdin)")
	runCmd.Flags().StringArrayVar(&runSet, "set", nil, "patch the input document before evaluation, as path=value (repeatable)")
	runCmd.Flags().BoolVar(&runPretty, "pretty", false, "pretty-print the JSON result")
	runCmd.Flags().StringVar(&runInputs, "input-name", "input", "name the input document is bound to")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runInputJSON != "" && runInputYAML != "" {
		return fmt.Errorf("--input-json and --input-yaml are mutually exclusive")
	}

	source, err := readSource(runEval, args)
	if err != nil {
		return err
	}

	doc, err := loadInputDocument()
	if err != nil {
		return err
	}
	for _, patch := range runSet {
		parts := strings.SplitN(patch, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("--set expects path=value, got %q", patch)
		}
		patched, err := sjson.SetRaw(doc, parts[0], quoteIfNotJSON(parts[1]))
		if err != nil {
			return fmt.Errorf("--set %q: %w", patch, err)
		}
		doc = patched
	}

	inputVal, err := decodeJSONDoc(doc)
	if err != nil {
		return fmt.Errorf("input document is not valid JSON: %w", err)
	}

	expr, perrs := parser.Parse(source)
	if len(perrs) != 0 {
		for _, e := range perrs {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}
	tree, lerrs := compiler.Lower(expr, source, []string{runInputs})
	if len(lerrs) != 0 {
		for _, e := range lerrs {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("lowering failed with %d error(s)", len(lerrs))
	}

	ev := interp.New(clock.System)
	ev.Source = source
	env := interp.NewEnv([]jsonvalue.Value{inputVal})
	result, err := ev.Eval(tree, env)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	out, err := result.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	if runPretty {
		out = pretty.Pretty(out)
	}
	fmt.Println(string(out))
	return nil
}

// loadInputDocument reads --input-json/--input-yaml (or "{}" if neither was
// given) and returns its contents as a JSON text, converting YAML to JSON
// first since YAML is a strict superset of JSON's data model.
func loadInputDocument() (string, error) {
	switch {
	case runInputYAML != "":
		data, err := readPathOrStdin(runInputYAML)
		if err != nil {
			return "", err
		}
		var decoded interface{}
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			return "", fmt.Errorf("invalid YAML input: %w", err)
		}
		jsonBytes, err := json.Marshal(decoded)
		if err != nil {
			return "", err
		}
		return string(jsonBytes), nil
	case runInputJSON != "":
		data, err := readPathOrStdin(runInputJSON)
		if err != nil {
			return "", err
		}
		if !gjson.ValidBytes(data) {
			return "", fmt.Errorf("input JSON is not valid")
		}
		return string(data), nil
	default:
		return "{}", nil
	}
}

func readPathOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return readAllStdin()
	}
	return os.ReadFile(path)
}

func readAllStdin() ([]byte, error) {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			break
		}
	}
	return buf, nil
}

// quoteIfNotJSON lets --set accept both bare JSON literals (42, true,
// "str", [1,2]) and plain unquoted strings, quoting the latter so sjson
// stores them as JSON strings rather than failing to parse.
func quoteIfNotJSON(val string) string {
	if gjson.Valid(val) {
		return val
	}
	q, _ := json.Marshal(val)
	return string(q)
}

func decodeJSONDoc(doc string) (jsonvalue.Value, error) {
	var x interface{}
	if err := json.Unmarshal([]byte(doc), &x); err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.FromGo(x), nil
}
