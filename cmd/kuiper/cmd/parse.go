package cmd

import (
	"fmt"
	"os"

	"github.com/cognitedata/kuiper/internal/parser"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Kuiper expression and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse this expression instead of reading a file")
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := readSource(parseEval, args)
	if err != nil {
		return err
	}
	expr, errs := parser.Parse(source)
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}
	fmt.Println(expr.String())
	return nil
}
