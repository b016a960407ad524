package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xshade/internal/ast"
)

func evaluate(t *testing.T, condition string) ast.Variant {
	t.Helper()
	cond, err := ParseCondition("test", condition)
	require.NoError(t, err, "condition: %s", condition)
	value, err := cond.Evaluate()
	require.NoError(t, err, "condition: %s", condition)
	return value
}

func TestConditionEvaluation(t *testing.T) {
	tests := []struct {
		condition string
		expected  bool
	}{
		{"1", true},
		{"0", false},
		{"(1<<3) > 4", true},
		{"(1<<3) > 40", false},
		{"1 + 2 * 3 == 7", true},
		{"(1 + 2) * 3 == 9", true},
		{"10 / 2 - 5", false},
		{"7 % 4 == 3", true},
		{"1 && 0", false},
		{"1 || 0", true},
		{"!0", true},
		{"~0 == -1", true},
		{"-3 < -2", true},
		{"5 & 3", true},
		{"5 ^ 5", false},
		{"1 ? 0 : 1", false},
		{"0 ? 0 : 1", true},
		{"0x10 == 16", true},
		{"3 >= 3 && 2 <= 4", true},
		{"1 != 1", false},
	}

	for _, test := range tests {
		value := evaluate(t, test.condition)
		assert.Equal(t, test.expected, value.ToBool(), "condition: %s", test.condition)
	}
}

func TestUndefinedIdentifiersFoldToZero(t *testing.T) {
	assert.False(t, evaluate(t, "UNDEFINED_MACRO").ToBool())
	assert.True(t, evaluate(t, "UNDEFINED_MACRO == 0").ToBool())
}

func TestDivisionByZeroIsReported(t *testing.T) {
	cond, err := ParseCondition("test", "1 / 0")
	require.NoError(t, err)
	_, err = cond.Evaluate()
	assert.ErrorIs(t, err, ast.ErrDivisionByZero)
}

func TestMalformedConditionIsRejected(t *testing.T) {
	_, err := ParseCondition("test", "1 +")
	assert.Error(t, err)
}
