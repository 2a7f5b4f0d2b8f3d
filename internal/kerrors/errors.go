// Package kerrors formats Kuiper's compile-time and runtime errors with
// source context, following the teacher's CompilerError convention (a
// header line, the offending source line, and a caret under the exact
// column) generalized from line/column positions to byte spans.
package kerrors

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range [Start, End) into the original source.
type Span struct {
	Start, End int
}

// Kind is the taxonomy of error kinds from spec.md §7.
type Kind string

const (
	// Lex errors.
	KindInvalidNumber     Kind = "InvalidNumber"
	KindUnterminatedString Kind = "UnterminatedString"
	KindBadEscape         Kind = "BadEscape"
	KindUnknownChar       Kind = "UnknownChar"

	// Parse errors.
	KindUnexpectedToken Kind = "UnexpectedToken"
	KindUnexpectedEOF   Kind = "UnexpectedEof"

	// Build (lowering) errors.
	KindUnknownVariable      Kind = "UnknownVariable"
	KindVariableConflict     Kind = "VariableConflict"
	KindUnrecognizedFunction Kind = "UnrecognizedFunction"
	KindNFunctionArgs        Kind = "NFunctionArgs"
	KindUnexpectedLambda     Kind = "UnexpectedLambda"
	KindBuildOther           Kind = "Other"

	// Eval (runtime) errors.
	KindIncorrectType     Kind = "IncorrectType"
	KindInvalidOperation  Kind = "InvalidOperation"
	KindArithmeticOverflow Kind = "ArithmeticOverflow"
	KindConversionFailed  Kind = "ConversionFailed"
	KindSourceMissing     Kind = "SourceMissing"

	// Type-inference errors.
	KindExpectedType Kind = "ExpectedType"
)

// Stage identifies which compiler stage raised the error, for the tagged
// CompileError union spec.md §6 describes (Lex/Parse/Build/Optimizer).
type Stage string

const (
	StageLex    Stage = "Lex"
	StageParse  Stage = "Parse"
	StageBuild  Stage = "Build"
	StageEval   Stage = "Eval"
	StageInfer  Stage = "Type"
)

// Error is a single Kuiper error: a stage, a taxonomy kind, a message, and
// the source span it applies to.
type Error struct {
	Stage   Stage
	Kind    Kind
	Message string
	Span    Span
	Source  string
}

func New(stage Stage, kind Kind, span Span, source, format string, args ...interface{}) *Error {
	return &Error{Stage: stage, Kind: kind, Message: fmt.Sprintf(format, args...), Span: span, Source: source}
}

func (e *Error) Error() string { return e.Format(false) }

// lineCol converts a byte offset into 1-indexed line/column.
func (e *Error) lineCol(offset int) (line, col int) {
	line, col = 1, 1
	for i, r := range e.Source {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (e *Error) sourceLine(lineNum int) string {
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Format renders the error the way the teacher's CompilerError does: a
// "stage/kind at line:col" header, the source line, and a caret.
func (e *Error) Format(color bool) string {
	var sb strings.Builder
	line, col := e.lineCol(e.Span.Start)
	sb.WriteString(fmt.Sprintf("%s error (%s) at %d:%d\n", e.Stage, e.Kind, line, col))

	if src := e.sourceLine(line); src != "" {
		prefix := fmt.Sprintf("%4d | ", line)
		sb.WriteString(prefix)
		sb.WriteString(src)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}
