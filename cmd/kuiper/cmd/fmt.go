package cmd

import (
	"fmt"
	"os"

	"github.com/cognitedata/kuiper/internal/parser"
	"github.com/spf13/cobra"
)

var (
	fmtWrite bool
	fmtList  bool
	fmtDiff  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Reformat a Kuiper expression into its canonical form",
	Long: `Parse a Kuiper expression and print it back out in canonical form:
normalized spacing, explicit grouping parentheses around every binary and
unary operation, and a single method-call-chain-friendly layout.

By default the canonical form is printed to stdout. --write rewrites the
file in place; --list prints the file's path only if its formatting would
change; --diff prints a ---/+++ header, then the whole original text as one
"-" line and the whole canonical text as one "+" line (no hunk headers).`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the canonical form back to the file")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "print the file path only if reformatting would change it")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "print the original and canonical form as a -/+ pair under a ---/+++ header")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	original := string(data)

	expr, errs := parser.Parse(original)
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Format(true))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}
	canonical := expr.String() + "\n"

	if canonical == original {
		if fmtList {
			return nil
		}
		if !fmtWrite && !fmtDiff {
			fmt.Print(canonical)
		}
		return nil
	}

	switch {
	case fmtList:
		fmt.Println(path)
	case fmtWrite:
		if err := os.WriteFile(path, []byte(canonical), 0o644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	case fmtDiff:
		fmt.Printf("--- %s\n+++ %s (canonical)\n-%s\n+%s\n", path, path, original, canonical)
	default:
		fmt.Print(canonical)
	}
	return nil
}
