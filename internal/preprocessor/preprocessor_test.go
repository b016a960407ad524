package preprocessor

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xshade/internal/errors"
	"xshade/internal/parser"
	"xshade/internal/source"
	"xshade/token"
)

func preprocess(t *testing.T, input string) (string, bool, *errors.CollectLog) {
	t.Helper()
	log := &errors.CollectLog{}
	pp := New(nil, log)
	out, ok := pp.Process(source.NewCodeFromString("test.hlsl", input))
	return out, ok, log
}

// respell re-scans preprocessed output and joins the token spellings with
// single spaces, so assertions are independent of expansion whitespace.
func respell(t *testing.T, out string) string {
	t.Helper()
	log := &errors.CollectLog{}
	scanner := parser.NewScanner(source.NewCodeFromString("out.hlsl", out), errors.NewHandler(log))

	var spells []string
	for {
		tkn := scanner.Next()
		if tkn.Kind == token.EndOfStream {
			break
		}
		spells = append(spells, tkn.Spell)
	}
	require.Empty(t, log.Reports)
	return strings.Join(spells, " ")
}

func TestObjectMacroExpansion(t *testing.T) {
	out, ok, log := preprocess(t, "#define SIZE 4\nint a[SIZE];")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Equal(t, "int a [ 4 ] ;", respell(t, out))
}

func TestFunctionMacroExpansion(t *testing.T) {
	out, ok, log := preprocess(t, "#define SQR(x) ((x)*(x))\nfloat y = SQR(2.0);")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Equal(t, "float y = ( ( 2.0 ) * ( 2.0 ) ) ;", respell(t, out))
}

func TestFunctionMacroWithTwoParameters(t *testing.T) {
	out, ok, log := preprocess(t, "#define ADD(a, b) (a + b)\nint z = ADD(1, 2);")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Equal(t, "int z = ( 1 + 2 ) ;", respell(t, out))
}

func TestFunctionMacroNameWithoutArgsStays(t *testing.T) {
	out, ok, log := preprocess(t, "#define F(x) x\nint F;")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Equal(t, "int F ;", respell(t, out))
}

func TestTokenPaste(t *testing.T) {
	out, ok, log := preprocess(t, "#define GLUE(a, b) a##b\nint GLUE(var, 1) = 0;")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "var1")
}

func TestStringize(t *testing.T) {
	out, ok, log := preprocess(t, "#define NAME(x) #x\nstring s = NAME(hello);")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, `"hello"`)
}

func TestNestedMacroExpansion(t *testing.T) {
	out, ok, log := preprocess(t, "#define A B\n#define B 42\nint x = A;")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Equal(t, "int x = 42 ;", respell(t, out))
}

func TestRecursiveMacroStops(t *testing.T) {
	out, ok, log := preprocess(t, "#define LOOP LOOP\nint x = LOOP;")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "LOOP")
}

func TestUndef(t *testing.T) {
	out, ok, log := preprocess(t, "#define V 1\n#undef V\nint x = V;")
	require.True(t, ok, "reports: %v", log.Reports)
	respelled := respell(t, out)
	assert.Contains(t, respelled, "V")
	assert.NotContains(t, respelled, "1")
}

func TestConditionalInclusion(t *testing.T) {
	out, ok, log := preprocess(t, "#if (1<<3) > 4\nint x;\n#endif")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "int x;")
}

func TestConditionalExclusion(t *testing.T) {
	out, ok, log := preprocess(t, "#if (1<<3) > 40\nint x;\n#endif")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.NotContains(t, out, "int x;")
}

func TestElifAndElse(t *testing.T) {
	input := `#if 0
int a;
#elif 1
int b;
#else
int c;
#endif`
	out, ok, log := preprocess(t, input)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.NotContains(t, out, "int a;")
	assert.Contains(t, out, "int b;")
	assert.NotContains(t, out, "int c;")
}

func TestNestedConditionals(t *testing.T) {
	input := `#if 1
#if 0
int a;
#endif
int b;
#endif`
	out, ok, log := preprocess(t, input)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.NotContains(t, out, "int a;")
	assert.Contains(t, out, "int b;")
}

func TestIfdefAndDefinedOperator(t *testing.T) {
	input := `#define FEATURE 1
#ifdef FEATURE
int a;
#endif
#ifndef OTHER
int b;
#endif
#if defined(FEATURE) && !defined(OTHER)
int c;
#endif`
	out, ok, log := preprocess(t, input)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "int a;")
	assert.Contains(t, out, "int b;")
	assert.Contains(t, out, "int c;")
}

func TestMacroInCondition(t *testing.T) {
	out, ok, log := preprocess(t, "#define LEVEL 3\n#if LEVEL >= 2\nint x;\n#endif")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "int x;")
}

func TestUnbalancedEndifIsFatal(t *testing.T) {
	_, ok, log := preprocess(t, "#endif\nint x;")
	assert.False(t, ok)
	require.NotEmpty(t, log.Reports)
	assert.Equal(t, errors.Fatal, log.Reports[0].Severity)
}

func TestMissingEndifIsFatal(t *testing.T) {
	_, ok, _ := preprocess(t, "#if 1\nint x;")
	assert.False(t, ok)
}

func TestErrorDirective(t *testing.T) {
	_, ok, log := preprocess(t, "#error unsupported configuration\nint x;")
	assert.False(t, ok)
	require.NotEmpty(t, log.Reports)
	assert.Contains(t, log.Reports[0].Message, "unsupported configuration")
}

func TestErrorDirectiveInDisabledBranch(t *testing.T) {
	_, ok, log := preprocess(t, "#if 0\n#error never\n#endif\nint x;")
	assert.True(t, ok, "reports: %v", log.Reports)
}

func TestPragmaIsIgnoredWithWarning(t *testing.T) {
	out, ok, log := preprocess(t, "#pragma pack_matrix(row_major)\nint x;")
	require.True(t, ok)
	assert.Contains(t, out, "int x;")

	found := false
	for _, report := range log.Reports {
		if report.Severity == errors.Warning {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFunctionMacroRedefinitionWithDifferentArity(t *testing.T) {
	_, ok, log := preprocess(t, "#define F(a) a\n#define F(a, b) a\nint x;")
	assert.False(t, ok)
	require.NotEmpty(t, log.Reports)
	assert.Equal(t, errors.CodeMacroRedefinition, log.Reports[0].Code)
}

func TestMacroListInDefinitionOrder(t *testing.T) {
	log := &errors.CollectLog{}
	pp := New(nil, log)
	_, ok := pp.Process(source.NewCodeFromString("test.hlsl", "#define B 2\n#define A 1\n#undef B\n"))
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, pp.ListDefinedMacroIdents())
}

type mapIncludeHandler struct {
	files map[string]string
}

func (h *mapIncludeHandler) Include(name string, isSystem bool) (io.Reader, error) {
	content, ok := h.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return strings.NewReader(content), nil
}

func TestInclude(t *testing.T) {
	log := &errors.CollectLog{}
	pp := New(&mapIncludeHandler{files: map[string]string{
		"common.hlsl": "#define PI 3.14159\nfloat common;\n",
	}}, log)

	out, ok := pp.Process(source.NewCodeFromString("test.hlsl", "#include \"common.hlsl\"\nfloat x = PI;"))
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "float common;")
	assert.Contains(t, out, "3.14159")
	assert.Contains(t, out, "#line 1 \"common.hlsl\"")
	assert.Contains(t, out, "#line 2 \"test.hlsl\"")
}

func TestMissingIncludeIsFatal(t *testing.T) {
	log := &errors.CollectLog{}
	pp := New(&mapIncludeHandler{files: map[string]string{}}, log)

	_, ok := pp.Process(source.NewCodeFromString("test.hlsl", "#include \"nope.hlsl\"\n"))
	assert.False(t, ok)
	require.NotEmpty(t, log.Reports)
	assert.Equal(t, errors.CodeMissingInclude, log.Reports[0].Code)
}

func TestLineDirectivePassesThrough(t *testing.T) {
	out, ok, log := preprocess(t, "#line 42 \"other.hlsl\"\nint x;")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "#line 42 \"other.hlsl\"")
	assert.Contains(t, out, "int x;")
}

func TestLineContinuationInDefine(t *testing.T) {
	out, ok, log := preprocess(t, "#define LONG 1 + \\\n2\nint x = LONG;")
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Equal(t, "int x = 1 + 2 ;", respell(t, out))
}
