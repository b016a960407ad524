package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantPromotion(t *testing.T) {
	sum, err := IntVariant(1).Add(RealVariant(2.5))
	require.NoError(t, err)
	assert.Equal(t, VariantReal, sum.Type())
	assert.Equal(t, 3.5, sum.ToReal())

	product, err := IntVariant(3).Mul(IntVariant(4))
	require.NoError(t, err)
	assert.Equal(t, VariantInt, product.Type())
	assert.Equal(t, int64(12), product.ToInt())

	// Booleans promote to integers for arithmetic.
	sum, err = BoolVariant(true).Add(IntVariant(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.ToInt())
}

func TestVariantComparisons(t *testing.T) {
	assert.Equal(t, -1, IntVariant(1).Compare(IntVariant(2)))
	assert.Equal(t, 0, IntVariant(2).Compare(RealVariant(2.0)))
	assert.Equal(t, 1, RealVariant(2.5).Compare(IntVariant(2)))
}

func TestVariantDivisionByZero(t *testing.T) {
	_, err := IntVariant(1).Div(IntVariant(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = RealVariant(1).Div(RealVariant(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = IntVariant(1).Mod(IntVariant(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestVariantShifts(t *testing.T) {
	value, err := IntVariant(1).LShift(IntVariant(3))
	require.NoError(t, err)
	assert.Equal(t, int64(8), value.ToInt())

	value, err = IntVariant(16).RShift(IntVariant(2))
	require.NoError(t, err)
	assert.Equal(t, int64(4), value.ToInt())
}

func literalInt(value string) *LiteralExpr {
	return &LiteralExpr{DataType: DataInt, Value: value}
}

func TestEvaluateBinaryTree(t *testing.T) {
	// (1 << 3) > 4
	shift := &BinaryExpr{
		Lhs: literalInt("1"),
		Op:  OpLShift,
		Rhs: literalInt("3"),
	}
	cmp := &BinaryExpr{
		Lhs: &BracketExpr{Expr: shift},
		Op:  OpGreater,
		Rhs: literalInt("4"),
	}

	ev := NewConstExprEvaluator(nil)
	value, err := ev.EvaluateExpr(cmp)
	require.NoError(t, err)
	assert.True(t, value.ToBool())
}

func TestEvaluateTernaryAndUnary(t *testing.T) {
	// !false ? -2 : 3
	expr := &TernaryExpr{
		Cond: &UnaryExpr{Op: OpLogicalNot, Expr: &LiteralExpr{DataType: DataBool, Value: "false"}},
		Then: &UnaryExpr{Op: OpNegate, Expr: literalInt("2")},
		Else: literalInt("3"),
	}

	ev := NewConstExprEvaluator(nil)
	value, err := ev.EvaluateExpr(expr)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), value.ToInt())
}

func TestEvaluateRejectsNonConstant(t *testing.T) {
	ev := NewConstExprEvaluator(nil)

	_, err := ev.EvaluateExpr(&FunctionCallExpr{Call: &FunctionCall{}})
	assert.Error(t, err)

	_, err = ev.EvaluateExpr(&InitializerExpr{})
	assert.Error(t, err)

	_, err = ev.EvaluateExpr(&NullExpr{})
	assert.Error(t, err)

	access := &VarAccessExpr{VarIdent: &VarIdent{Ident: "x"}}
	_, err = ev.EvaluateExpr(access)
	assert.Error(t, err)
}

func TestEvaluateVarAccessCallback(t *testing.T) {
	access := &VarAccessExpr{VarIdent: &VarIdent{Ident: "x"}}
	expr := &BinaryExpr{Lhs: access, Op: OpAdd, Rhs: literalInt("1")}

	ev := NewConstExprEvaluator(func(*VarAccessExpr) (Variant, error) {
		return IntVariant(41), nil
	})
	value, err := ev.EvaluateExpr(expr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), value.ToInt())
}

// Evaluating the same expression twice yields identical variants; the
// evaluator carries no state between runs.
func TestEvaluationIsPure(t *testing.T) {
	expr := &BinaryExpr{
		Lhs: &LiteralExpr{DataType: DataFloat, Value: "2.5f"},
		Op:  OpMul,
		Rhs: literalInt("4"),
	}

	ev := NewConstExprEvaluator(nil)
	first, err := ev.EvaluateExpr(expr)
	require.NoError(t, err)
	second, err := ev.EvaluateExpr(expr)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 10.0, first.ToReal())
}

func TestFloatLiteralSuffixes(t *testing.T) {
	ev := NewConstExprEvaluator(nil)

	value, err := ev.EvaluateExpr(&LiteralExpr{DataType: DataFloat, Value: "1.5f"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, value.ToReal())

	value, err = ev.EvaluateExpr(&LiteralExpr{DataType: DataHalf, Value: "0.5h"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, value.ToReal())
}

func TestDataTypeFromKeyword(t *testing.T) {
	tests := map[string]DataType{
		"float":    DataFloat,
		"int3":     VectorDataType(ScalarInt, 3),
		"float4x4": MatrixDataType(ScalarFloat, 4, 4),
		"bool2":    VectorDataType(ScalarBool, 2),
		"uint":     DataUInt,
		"half2x3":  MatrixDataType(ScalarHalf, 2, 3),
	}
	for keyword, expected := range tests {
		dataType, err := DataTypeFromKeyword(keyword)
		require.NoError(t, err, "keyword: %s", keyword)
		assert.Equal(t, expected, dataType, "keyword: %s", keyword)
	}

	_, err := DataTypeFromKeyword("float5")
	assert.Error(t, err)
}

func TestGetFromArray(t *testing.T) {
	base := &BaseTypeDenoter{DataType: DataFloat}
	array := &ArrayTypeDenoter{Base: base, Dims: []Expr{literalInt("4"), literalInt("2")}}

	peeled, err := GetFromArray(array, 2)
	require.NoError(t, err)
	assert.Same(t, TypeDenoter(base), peeled)

	partial, err := GetFromArray(array, 1)
	require.NoError(t, err)
	partialArray, ok := partial.(*ArrayTypeDenoter)
	require.True(t, ok)
	assert.Len(t, partialArray.Dims, 1)

	_, err = GetFromArray(array, 3)
	assert.Error(t, err)
}

func TestAliasDenoterResolution(t *testing.T) {
	base := &BaseTypeDenoter{DataType: DataInt}
	alias := &AliasTypeDenoter{Ident: "X"}

	// Undecorated aliases denote themselves.
	assert.Same(t, TypeDenoter(alias), alias.Get())

	alias.AliasRef = &AliasDecl{Ident: "X", TypeDenoter: base}
	assert.Same(t, TypeDenoter(base), alias.Get())
}

func TestParseSemantic(t *testing.T) {
	sem := ParseSemantic("COLOR0")
	assert.Equal(t, SemanticTarget, sem.Semantic)
	assert.Equal(t, 0, sem.Index)
	assert.Equal(t, "COLOR0", sem.Name)
	assert.True(t, sem.IsSystemValue())

	sem = ParseSemantic("TEXCOORD3")
	assert.Equal(t, SemanticUserDefined, sem.Semantic)
	assert.Equal(t, 3, sem.Index)
	assert.False(t, sem.IsSystemValue())

	sem = ParseSemantic("SV_Position")
	assert.Equal(t, SemanticPosition, sem.Semantic)
	assert.True(t, sem.IsSystemValue())

	assert.False(t, IndexedSemantic{}.IsValid())
}
