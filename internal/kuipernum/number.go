// Package kuipernum implements Kuiper's three-kind JSON number model:
// unsigned integer (up to 2^64-1), signed integer (down to -2^63), and
// 64-bit float. Arithmetic widens lazily and narrows results back to the
// tightest representable kind, matching the reference implementation in
// kuiper_lang's numbers.rs.
package kuipernum

import (
	"fmt"
	"math"
	"math/big"
)

// Kind tags which of the three representations a Number currently holds.
type Kind uint8

const (
	KindUint Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindUint, KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Number is an immutable tagged numeric value.
type Number struct {
	kind Kind
	u    uint64
	i    int64
	f    float64
}

func Uint(u uint64) Number  { return Number{kind: KindUint, u: u} }
func Int(i int64) Number    { return Number{kind: KindInt, i: i} }
func Float(f float64) Number { return Number{kind: KindFloat, f: f} }

func (n Number) Kind() Kind { return n.kind }

func (n Number) IsInteger() bool { return n.kind == KindUint || n.kind == KindInt }

// AsFloat converts the number to float64, losslessly for Float, with
// possible precision loss for very large integers (matches IEEE-754
// float64 conversion semantics, as spec.md accepts).
func (n Number) AsFloat() float64 {
	switch n.kind {
	case KindUint:
		return float64(n.u)
	case KindInt:
		return float64(n.i)
	default:
		return n.f
	}
}

// AsUint64 returns the value as uint64 if it is exactly representable.
func (n Number) AsUint64() (uint64, bool) {
	switch n.kind {
	case KindUint:
		return n.u, true
	case KindInt:
		if n.i >= 0 {
			return uint64(n.i), true
		}
		return 0, false
	default:
		if n.f < 0 || math.Trunc(n.f) != n.f || n.f > math.MaxUint64 {
			return 0, false
		}
		return uint64(n.f), true
	}
}

// AsInt64 returns the value as int64 if it is exactly representable.
func (n Number) AsInt64() (int64, bool) {
	switch n.kind {
	case KindInt:
		return n.i, true
	case KindUint:
		if n.u <= math.MaxInt64 {
			return int64(n.u), true
		}
		return 0, false
	default:
		if math.Trunc(n.f) != n.f || n.f < math.MinInt64 || n.f > math.MaxInt64 {
			return 0, false
		}
		return int64(n.f), true
	}
}

func (n Number) bigInt() *big.Int {
	switch n.kind {
	case KindUint:
		return new(big.Int).SetUint64(n.u)
	case KindInt:
		return big.NewInt(n.i)
	default:
		panic("kuipernum: bigInt called on float")
	}
}

// narrow picks the tightest representation for an exact integer result:
// Uint if non-negative and fits uint64, else Int if it fits int64,
// else an ArithmeticOverflow error.
func narrow(x *big.Int) (Number, error) {
	if x.Sign() >= 0 && x.IsUint64() {
		return Uint(x.Uint64()), nil
	}
	if x.IsInt64() {
		return Int(x.Int64()), nil
	}
	return Number{}, &OverflowError{Detail: fmt.Sprintf(
		"arithmetic overflow: result %s is outside the representable range [%d, %d]",
		x.String(), int64(math.MinInt64), uint64(math.MaxUint64))}
}

// OverflowError reports an integer result outside [-2^63, 2^64-1].
type OverflowError struct{ Detail string }

func (e *OverflowError) Error() string { return e.Detail }

// DivideByZeroError reports division or modulo by zero.
type DivideByZeroError struct{ Op string }

func (e *DivideByZeroError) Error() string { return fmt.Sprintf("%s by zero", e.Op) }

func (n Number) Add(other Number) (Number, error) {
	if n.kind == KindFloat || other.kind == KindFloat {
		return Float(n.AsFloat() + other.AsFloat()), nil
	}
	return narrow(new(big.Int).Add(n.bigInt(), other.bigInt()))
}

func (n Number) Sub(other Number) (Number, error) {
	if n.kind == KindFloat || other.kind == KindFloat {
		return Float(n.AsFloat() - other.AsFloat()), nil
	}
	return narrow(new(big.Int).Sub(n.bigInt(), other.bigInt()))
}

func (n Number) Mul(other Number) (Number, error) {
	if n.kind == KindFloat || other.kind == KindFloat {
		return Float(n.AsFloat() * other.AsFloat()), nil
	}
	return narrow(new(big.Int).Mul(n.bigInt(), other.bigInt()))
}

// Div always yields a float, per spec.md's number model.
func (n Number) Div(other Number) (Number, error) {
	d := other.AsFloat()
	if d == 0 {
		return Number{}, &DivideByZeroError{Op: "division"}
	}
	return Float(n.AsFloat() / d), nil
}

// Mod mirrors the sign of the dividend. Uses exact int64 arithmetic when
// both operands fit, otherwise falls back to float modulo.
func (n Number) Mod(other Number) (Number, error) {
	if n.kind == KindFloat || other.kind == KindFloat {
		bf := other.AsFloat()
		if bf == 0 {
			return Number{}, &DivideByZeroError{Op: "modulo"}
		}
		return Float(math.Mod(n.AsFloat(), bf)), nil
	}
	ai, aok := n.AsInt64()
	bi, bok := other.AsInt64()
	if aok && bok {
		if bi == 0 {
			return Number{}, &DivideByZeroError{Op: "modulo"}
		}
		return Int(ai % bi), nil
	}
	bf := other.AsFloat()
	if bf == 0 {
		return Number{}, &DivideByZeroError{Op: "modulo"}
	}
	return Float(math.Mod(n.AsFloat(), bf)), nil
}

// Neg negates the number, widening to float when the magnitude would not
// otherwise be representable (e.g. negating a large uint64, or negating
// math.MinInt64).
func (n Number) Neg() (Number, error) {
	switch n.kind {
	case KindFloat:
		return Float(-n.f), nil
	default:
		r, err := narrow(new(big.Int).Neg(n.bigInt()))
		if err != nil {
			return Float(-n.AsFloat()), nil
		}
		return r, nil
	}
}

func (n Number) bigFloat() *big.Float {
	switch n.kind {
	case KindFloat:
		return new(big.Float).SetFloat64(n.f)
	default:
		return new(big.Float).SetInt(n.bigInt())
	}
}

// Cmp returns -1, 0, or 1 comparing n and other semantically across kinds.
// NaN is never ordered with anything, including itself: when either operand
// is NaN, Cmp returns 2, which callers handling comparison operators check.
func (n Number) Cmp(other Number) int {
	if n.kind == KindFloat && math.IsNaN(n.f) {
		return 2
	}
	if other.kind == KindFloat && math.IsNaN(other.f) {
		return 2
	}
	if n.kind != KindFloat && other.kind != KindFloat {
		return n.bigInt().Cmp(other.bigInt())
	}
	return n.bigFloat().Cmp(other.bigFloat())
}

// Equal reports numeric equality across kinds. NaN == NaN is false, as in
// JSON/IEEE-754.
func (n Number) Equal(other Number) bool {
	c := n.Cmp(other)
	return c == 0
}

func (n Number) IsNaN() bool { return n.kind == KindFloat && math.IsNaN(n.f) }
func (n Number) IsInf() bool { return n.kind == KindFloat && math.IsInf(n.f, 0) }

func (n Number) String() string {
	switch n.kind {
	case KindUint:
		return fmt.Sprintf("%d", n.u)
	case KindInt:
		return fmt.Sprintf("%d", n.i)
	default:
		return formatFloat(n.f)
	}
}

func formatFloat(f float64) string {
	if math.Trunc(f) == f && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprintf("%g", f)
}
