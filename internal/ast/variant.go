package ast

import (
	"errors"
	"strconv"
)

// VariantType tags the active member of a Variant.
type VariantType int

const (
	VariantUndefined VariantType = iota
	VariantBool
	VariantInt
	VariantReal
)

// ErrDivisionByZero is reported when constant folding divides by zero.
var ErrDivisionByZero = errors.New("division by zero in constant expression")

// Variant is the tagged value sum computed by constant-expression
// evaluation: a boolean, a 64-bit integer, or a 64-bit real.
type Variant struct {
	typ  VariantType
	b    bool
	i    int64
	r    float64
}

func BoolVariant(v bool) Variant    { return Variant{typ: VariantBool, b: v} }
func IntVariant(v int64) Variant    { return Variant{typ: VariantInt, i: v} }
func RealVariant(v float64) Variant { return Variant{typ: VariantReal, r: v} }

// Type returns the active member tag.
func (v Variant) Type() VariantType { return v.typ }

// IsValid reports whether the variant holds a value.
func (v Variant) IsValid() bool { return v.typ != VariantUndefined }

// ToBool converts with C truthiness.
func (v Variant) ToBool() bool {
	switch v.typ {
	case VariantBool:
		return v.b
	case VariantInt:
		return v.i != 0
	case VariantReal:
		return v.r != 0
	}
	return false
}

// ToInt converts, truncating reals.
func (v Variant) ToInt() int64 {
	switch v.typ {
	case VariantBool:
		if v.b {
			return 1
		}
		return 0
	case VariantInt:
		return v.i
	case VariantReal:
		return int64(v.r)
	}
	return 0
}

// ToReal converts, widening integers.
func (v Variant) ToReal() float64 {
	switch v.typ {
	case VariantBool:
		if v.b {
			return 1
		}
		return 0
	case VariantInt:
		return float64(v.i)
	case VariantReal:
		return v.r
	}
	return 0
}

func (v Variant) String() string {
	switch v.typ {
	case VariantBool:
		return strconv.FormatBool(v.b)
	case VariantInt:
		return strconv.FormatInt(v.i, 10)
	case VariantReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	}
	return "<undefined>"
}

// promoted reports whether either operand is real; arithmetic promotes to the
// widest operand type.
func promoted(a, b Variant) bool {
	return a.typ == VariantReal || b.typ == VariantReal
}

// Add returns a + b.
func (v Variant) Add(rhs Variant) (Variant, error) {
	if promoted(v, rhs) {
		return RealVariant(v.ToReal() + rhs.ToReal()), nil
	}
	return IntVariant(v.ToInt() + rhs.ToInt()), nil
}

// Sub returns a - b.
func (v Variant) Sub(rhs Variant) (Variant, error) {
	if promoted(v, rhs) {
		return RealVariant(v.ToReal() - rhs.ToReal()), nil
	}
	return IntVariant(v.ToInt() - rhs.ToInt()), nil
}

// Mul returns a * b.
func (v Variant) Mul(rhs Variant) (Variant, error) {
	if promoted(v, rhs) {
		return RealVariant(v.ToReal() * rhs.ToReal()), nil
	}
	return IntVariant(v.ToInt() * rhs.ToInt()), nil
}

// Div returns a / b, or ErrDivisionByZero.
func (v Variant) Div(rhs Variant) (Variant, error) {
	if promoted(v, rhs) {
		if rhs.ToReal() == 0 {
			return Variant{}, ErrDivisionByZero
		}
		return RealVariant(v.ToReal() / rhs.ToReal()), nil
	}
	if rhs.ToInt() == 0 {
		return Variant{}, ErrDivisionByZero
	}
	return IntVariant(v.ToInt() / rhs.ToInt()), nil
}

// Mod returns a % b on integers, or ErrDivisionByZero.
func (v Variant) Mod(rhs Variant) (Variant, error) {
	if rhs.ToInt() == 0 {
		return Variant{}, ErrDivisionByZero
	}
	return IntVariant(v.ToInt() % rhs.ToInt()), nil
}

// Or returns the bitwise or of the integer conversions.
func (v Variant) Or(rhs Variant) (Variant, error) {
	return IntVariant(v.ToInt() | rhs.ToInt()), nil
}

// Xor returns the bitwise exclusive or of the integer conversions.
func (v Variant) Xor(rhs Variant) (Variant, error) {
	return IntVariant(v.ToInt() ^ rhs.ToInt()), nil
}

// And returns the bitwise and of the integer conversions.
func (v Variant) And(rhs Variant) (Variant, error) {
	return IntVariant(v.ToInt() & rhs.ToInt()), nil
}

// LShift returns a << b on integers.
func (v Variant) LShift(rhs Variant) (Variant, error) {
	return IntVariant(v.ToInt() << uint64(rhs.ToInt())), nil
}

// RShift returns a >> b on integers.
func (v Variant) RShift(rhs Variant) (Variant, error) {
	return IntVariant(v.ToInt() >> uint64(rhs.ToInt())), nil
}

// Compare returns -1, 0, or +1 ordering the two values after promotion.
func (v Variant) Compare(rhs Variant) int {
	if promoted(v, rhs) {
		a, b := v.ToReal(), rhs.ToReal()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	a, b := v.ToInt(), rhs.ToInt()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Negate returns -a.
func (v Variant) Negate() Variant {
	switch v.typ {
	case VariantReal:
		return RealVariant(-v.r)
	default:
		return IntVariant(-v.ToInt())
	}
}

// BitNot returns ^a on the integer conversion.
func (v Variant) BitNot() Variant {
	return IntVariant(^v.ToInt())
}
