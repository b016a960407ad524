package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// OnVarAccess supplies the value of a variable access during constant
// folding. Returning an error rejects the expression as non-constant.
type OnVarAccess func(*VarAccessExpr) (Variant, error)

// ConstExprEvaluator folds an expression subtree into a Variant. Evaluation
// is pure: it never touches the symbol table, and the only way variables
// contribute is through the supplied callback.
type ConstExprEvaluator struct {
	onVarAccess OnVarAccess
}

// NewConstExprEvaluator builds an evaluator; a nil callback rejects every
// variable access.
func NewConstExprEvaluator(onVarAccess OnVarAccess) *ConstExprEvaluator {
	if onVarAccess == nil {
		onVarAccess = func(ast *VarAccessExpr) (Variant, error) {
			return Variant{}, fmt.Errorf("expected constant expression")
		}
	}
	return &ConstExprEvaluator{onVarAccess: onVarAccess}
}

// EvaluateExpr folds the expression, or reports why it is not constant.
func (ev *ConstExprEvaluator) EvaluateExpr(e Expr) (Variant, error) {
	switch ast := e.(type) {
	case *NullExpr:
		return Variant{}, fmt.Errorf("illegal dynamic array dimension in constant expression")

	case *ListExpr:
		// Only the first sub-expression matters when a list is used as a
		// condition.
		return ev.EvaluateExpr(ast.First)

	case *LiteralExpr:
		return ev.evaluateLiteral(ast)

	case *TypeNameExpr:
		return Variant{}, fmt.Errorf("illegal type specifier in constant expression")

	case *TernaryExpr:
		cond, err := ev.EvaluateExpr(ast.Cond)
		if err != nil {
			return Variant{}, err
		}
		if cond.ToBool() {
			return ev.EvaluateExpr(ast.Then)
		}
		return ev.EvaluateExpr(ast.Else)

	case *BinaryExpr:
		lhs, err := ev.EvaluateExpr(ast.Lhs)
		if err != nil {
			return Variant{}, err
		}
		rhs, err := ev.EvaluateExpr(ast.Rhs)
		if err != nil {
			return Variant{}, err
		}
		return FoldBinary(ast.Op, lhs, rhs)

	case *UnaryExpr:
		val, err := ev.EvaluateExpr(ast.Expr)
		if err != nil {
			return Variant{}, err
		}
		return foldUnary(ast.Op, val)

	case *PostUnaryExpr:
		// Post inc/dec yields the value before the operation.
		switch ast.Op {
		case OpInc, OpDec:
			return ev.EvaluateExpr(ast.Expr)
		}
		return Variant{}, fmt.Errorf("illegal unary operator '%s' in constant expression", ast.Op)

	case *FunctionCallExpr:
		return Variant{}, fmt.Errorf("illegal function call in constant expression")

	case *BracketExpr:
		return ev.EvaluateExpr(ast.Expr)

	case *CastExpr:
		return ev.EvaluateExpr(ast.Expr)

	case *VarAccessExpr:
		return ev.onVarAccess(ast)

	case *InitializerExpr:
		return Variant{}, fmt.Errorf("illegal initializer list in constant expression")
	}
	return Variant{}, fmt.Errorf("illegal expression in constant expression")
}

func (ev *ConstExprEvaluator) evaluateLiteral(ast *LiteralExpr) (Variant, error) {
	switch ast.DataType.Scalar {
	case ScalarBool:
		switch ast.Value {
		case "true":
			return BoolVariant(true), nil
		case "false":
			return BoolVariant(false), nil
		}
		return Variant{}, fmt.Errorf("illegal boolean literal value %q", ast.Value)

	case ScalarInt, ScalarUInt:
		v, err := strconv.ParseInt(ast.Value, 0, 64)
		if err != nil {
			return Variant{}, fmt.Errorf("illegal integer literal value %q", ast.Value)
		}
		return IntVariant(v), nil

	case ScalarHalf, ScalarFloat, ScalarDouble:
		spell := strings.TrimRight(ast.Value, "fFhH")
		v, err := strconv.ParseFloat(spell, 64)
		if err != nil {
			return Variant{}, fmt.Errorf("illegal floating-point literal value %q", ast.Value)
		}
		return RealVariant(v), nil
	}
	return Variant{}, fmt.Errorf("illegal literal type %q in constant expression", ast.DataType.String())
}

// FoldBinary applies a binary operator to two variants with the promotion
// rules shared by the analyzer and the preprocessor condition evaluator.
func FoldBinary(op BinaryOp, lhs, rhs Variant) (Variant, error) {
	switch op {
	case OpLogicalAnd:
		return BoolVariant(lhs.ToBool() && rhs.ToBool()), nil
	case OpLogicalOr:
		return BoolVariant(lhs.ToBool() || rhs.ToBool()), nil
	case OpOr:
		return lhs.Or(rhs)
	case OpXor:
		return lhs.Xor(rhs)
	case OpAnd:
		return lhs.And(rhs)
	case OpLShift:
		return lhs.LShift(rhs)
	case OpRShift:
		return lhs.RShift(rhs)
	case OpAdd:
		return lhs.Add(rhs)
	case OpSub:
		return lhs.Sub(rhs)
	case OpMul:
		return lhs.Mul(rhs)
	case OpDiv:
		return lhs.Div(rhs)
	case OpMod:
		return lhs.Mod(rhs)
	case OpEqual:
		return BoolVariant(lhs.Compare(rhs) == 0), nil
	case OpNotEqual:
		return BoolVariant(lhs.Compare(rhs) != 0), nil
	case OpLess:
		return BoolVariant(lhs.Compare(rhs) < 0), nil
	case OpGreater:
		return BoolVariant(lhs.Compare(rhs) > 0), nil
	case OpLessEqual:
		return BoolVariant(lhs.Compare(rhs) <= 0), nil
	case OpGreaterEqual:
		return BoolVariant(lhs.Compare(rhs) >= 0), nil
	}
	return Variant{}, fmt.Errorf("illegal binary operator in constant expression")
}

func foldUnary(op UnaryOp, val Variant) (Variant, error) {
	switch op {
	case OpLogicalNot:
		return BoolVariant(!val.ToBool()), nil
	case OpNot:
		return val.BitNot(), nil
	case OpNop:
		return val, nil
	case OpNegate:
		return val.Negate(), nil
	case OpInc:
		return val.Add(IntVariant(1))
	case OpDec:
		return val.Sub(IntVariant(1))
	}
	return Variant{}, fmt.Errorf("illegal unary operator in constant expression")
}
