package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cognitedata/kuiper/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Kuiper expression and print the resulting tokens",
	Long: `Tokenize a Kuiper expression and print each token.

If no file is given and -e is not set, reads the expression from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize this expression instead of reading a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "show only illegal tokens")
}

func runLex(cmd *cobra.Command, args []string) error {
	source, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	toks := l.AllTokens()
	errCount := 0
	for _, tok := range toks {
		isErr := tok.Type == lexer.ILLEGAL
		if isErr {
			errCount++
		}
		if lexOnlyErrs && !isErr {
			continue
		}
		out := fmt.Sprintf("[%-12s] %q", tok.Type, tok.Literal)
		if lexShowPos {
			out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
		}
		fmt.Println(out)
	}
	if errCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errCount)
	}
	return nil
}

// readSource resolves the CLI's three input conventions: an inline -e
// expression, a file path argument, or stdin when neither is given.
func readSource(eval string, args []string) (string, error) {
	if eval != "" {
		return eval, nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
