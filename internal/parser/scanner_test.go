package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xshade/internal/errors"
	"xshade/internal/source"
	"xshade/token"
)

func scanAll(t *testing.T, input string) ([]token.Token, *errors.CollectLog) {
	t.Helper()
	log := &errors.CollectLog{}
	scanner := NewScanner(source.NewCodeFromString("test.hlsl", input), errors.NewHandler(log))

	var tokens []token.Token
	for {
		tkn := scanner.Next()
		if tkn.Kind == token.EndOfStream {
			break
		}
		tokens = append(tokens, tkn)
	}
	return tokens, log
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tkn := range tokens {
		out[i] = tkn.Kind
	}
	return out
}

func TestKeywordClasses(t *testing.T) {
	tokens, log := scanAll(t, "float float3 float4x4 if struct cbuffer Texture2D sampler2D const in static typedef void discard")
	assert.Empty(t, log.Reports)

	expected := []token.Kind{
		token.ScalarType, token.VectorType, token.MatrixType,
		token.If, token.Struct, token.UniformBuffer, token.Texture, token.Sampler,
		token.TypeModifier, token.InputModifier, token.StorageClass,
		token.Typedef, token.Void, token.CtrlTransfer,
	}
	assert.Equal(t, expected, kinds(tokens))
}

func TestLiterals(t *testing.T) {
	tokens, log := scanAll(t, `42 0x1F 1.5 2.0f 3h true false "hello"`)
	assert.Empty(t, log.Reports)

	expected := []token.Kind{
		token.IntLiteral, token.IntLiteral,
		token.FloatLiteral, token.FloatLiteral, token.FloatLiteral,
		token.BoolLiteral, token.BoolLiteral,
		token.StringLiteral,
	}
	require.Equal(t, expected, kinds(tokens))
	assert.Equal(t, `"hello"`, tokens[7].Spell)
	assert.Equal(t, "hello", tokens[7].SpellContent())
}

func TestOperatorsGreedy(t *testing.T) {
	tokens, log := scanAll(t, "<<= >>= << >> <= >= == != && || += ++ -- ?")
	assert.Empty(t, log.Reports)

	expected := []token.Kind{
		token.AssignOp, token.AssignOp,
		token.BinaryOp, token.BinaryOp, token.BinaryOp, token.BinaryOp,
		token.BinaryOp, token.BinaryOp, token.BinaryOp, token.BinaryOp,
		token.AssignOp, token.UnaryOp, token.UnaryOp, token.TernaryOp,
	}
	require.Equal(t, expected, kinds(tokens))
	assert.Equal(t, "<<=", tokens[0].Spell)
	assert.Equal(t, ">>", tokens[3].Spell)
}

func TestCommentsAreRetainedButElided(t *testing.T) {
	log := &errors.CollectLog{}
	scanner := NewScanner(source.NewCodeFromString("test.hlsl", "// doc\nint x;"), errors.NewHandler(log))

	tkn := scanner.Next()
	assert.Equal(t, token.ScalarType, tkn.Kind)
	assert.Equal(t, "// doc", scanner.TakeComment())
	assert.Equal(t, "", scanner.TakeComment())
}

func TestBlockComment(t *testing.T) {
	tokens, log := scanAll(t, "a /* block\ncomment */ b")
	assert.Empty(t, log.Reports)
	require.Len(t, tokens, 2)
	assert.Equal(t, "a", tokens[0].Spell)
	assert.Equal(t, "b", tokens[1].Spell)
}

func TestUnterminatedBlockCommentIsFatal(t *testing.T) {
	_, log := scanAll(t, "int x; /* no end")
	require.NotEmpty(t, log.Reports)
	last := log.Reports[len(log.Reports)-1]
	assert.Equal(t, errors.Fatal, last.Severity)
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	_, log := scanAll(t, `"no end`)
	require.NotEmpty(t, log.Reports)
	assert.Equal(t, errors.Fatal, log.Reports[0].Severity)
}

func TestMalformedLiteralRecovers(t *testing.T) {
	tokens, log := scanAll(t, "1abc ; int")
	require.NotEmpty(t, log.Reports)
	assert.Equal(t, errors.Error, log.Reports[0].Severity)
	// Scanning continues after the malformed literal.
	assert.Equal(t, token.ScalarType, tokens[len(tokens)-1].Kind)
}

func TestPositions(t *testing.T) {
	tokens, _ := scanAll(t, "int\n  x;")
	require.Len(t, tokens, 3)
	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)
	assert.Equal(t, 2, tokens[1].Pos.Line)
	assert.Equal(t, 3, tokens[1].Pos.Column)
}

func TestDirectiveToken(t *testing.T) {
	log := &errors.CollectLog{}
	scanner := NewScanner(source.NewCodeFromString("test.hlsl", "#line 42 \"other.hlsl\""), errors.NewHandler(log))

	tkn := scanner.Next()
	require.Equal(t, token.Directive, tkn.Kind)
	assert.Equal(t, "line", tkn.Spell)
}

func TestPreprocessorMode(t *testing.T) {
	log := &errors.CollectLog{}
	scanner := NewScanner(source.NewCodeFromString("test.hlsl", "a ## b \\\nc"), errors.NewHandler(log))

	var tokens []token.Token
	for {
		tkn := scanner.NextPP()
		if tkn.Kind == token.EndOfStream {
			break
		}
		tokens = append(tokens, tkn)
	}

	expected := []token.Kind{
		token.Ident, token.WhiteSpace, token.DirectiveConcat, token.WhiteSpace,
		token.Ident, token.WhiteSpace, token.LineBreak, token.NewLine, token.Ident,
	}
	assert.Equal(t, expected, kinds(tokens))
}

// Concatenating token spellings with single spaces must re-tokenize to the
// same sequence for preprocessor-free input.
func TestTokenRoundTrip(t *testing.T) {
	inputs := []string{
		"int x = 1 + 2 * (3 - y);",
		"float4 c = float4(1.0f, 0.0, 0.0, 1.0);",
		"if (a <= b && c != d) { x <<= 2; }",
		"struct S { float4 p : POSITION; };",
	}

	for _, input := range inputs {
		first, log := scanAll(t, input)
		require.Empty(t, log.Reports, "input: %s", input)

		var spells []string
		for _, tkn := range first {
			spells = append(spells, tkn.Spell)
		}
		second, log2 := scanAll(t, strings.Join(spells, " "))
		require.Empty(t, log2.Reports, "input: %s", input)

		require.Equal(t, len(first), len(second), "input: %s", input)
		for i := range first {
			assert.Equal(t, first[i].Kind, second[i].Kind, "input: %s", input)
			assert.Equal(t, first[i].Spell, second[i].Spell, "input: %s", input)
		}
	}
}
