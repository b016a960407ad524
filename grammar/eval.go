package grammar

import (
	"fmt"
	"strconv"

	"xshade/internal/ast"
)

// Evaluate folds a parsed condition into a Variant using the same operator
// semantics as the analyzer's constant-expression evaluator. Identifiers are
// macro names that survived expansion undefined; like in C, they fold to 0.
func (c *Condition) Evaluate() (ast.Variant, error) {
	return c.Expr.evaluate()
}

func (e *Ternary) evaluate() (ast.Variant, error) {
	cond, err := e.Cond.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	if e.Then == nil {
		return cond, nil
	}
	if cond.ToBool() {
		return e.Then.evaluate()
	}
	return e.Else.evaluate()
}

func (e *OrExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, rhsExpr := range e.Rhs {
		rhs, err := rhsExpr.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.OpLogicalOr, lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *AndExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, rhsExpr := range e.Rhs {
		rhs, err := rhsExpr.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.OpLogicalAnd, lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *BitOrExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, rhsExpr := range e.Rhs {
		rhs, err := rhsExpr.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.OpOr, lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *BitXorExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, rhsExpr := range e.Rhs {
		rhs, err := rhsExpr.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.OpXor, lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *BitAndExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, rhsExpr := range e.Rhs {
		rhs, err := rhsExpr.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.OpAnd, lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *EqualityExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, tail := range e.Rhs {
		rhs, err := tail.Rhs.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.StringToBinaryOp(tail.Op), lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *RelationExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, tail := range e.Rhs {
		rhs, err := tail.Rhs.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.StringToBinaryOp(tail.Op), lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *ShiftExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, tail := range e.Rhs {
		rhs, err := tail.Rhs.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.StringToBinaryOp(tail.Op), lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *AddExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, tail := range e.Rhs {
		rhs, err := tail.Rhs.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.StringToBinaryOp(tail.Op), lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *MulExpr) evaluate() (ast.Variant, error) {
	lhs, err := e.Lhs.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	for _, tail := range e.Rhs {
		rhs, err := tail.Rhs.evaluate()
		if err != nil {
			return ast.Variant{}, err
		}
		lhs, err = ast.FoldBinary(ast.StringToBinaryOp(tail.Op), lhs, rhs)
		if err != nil {
			return ast.Variant{}, err
		}
	}
	return lhs, nil
}

func (e *UnaryExpr) evaluate() (ast.Variant, error) {
	if e.Primary != nil {
		return e.Primary.evaluate()
	}
	val, err := e.Operand.evaluate()
	if err != nil {
		return ast.Variant{}, err
	}
	switch e.Op {
	case "!":
		return ast.BoolVariant(!val.ToBool()), nil
	case "~":
		return val.BitNot(), nil
	case "+":
		return val, nil
	case "-":
		return val.Negate(), nil
	}
	return ast.Variant{}, fmt.Errorf("illegal unary operator %q in condition", e.Op)
}

func (e *Primary) evaluate() (ast.Variant, error) {
	switch {
	case e.Int != nil:
		v, err := strconv.ParseInt(*e.Int, 0, 64)
		if err != nil {
			return ast.Variant{}, fmt.Errorf("illegal integer literal %q in condition", *e.Int)
		}
		return ast.IntVariant(v), nil
	case e.Ident != nil:
		// Undefined macro identifiers fold to 0.
		return ast.IntVariant(0), nil
	case e.Bracket != nil:
		return e.Bracket.evaluate()
	}
	return ast.Variant{}, fmt.Errorf("empty condition expression")
}
