package semantic

import (
	"strconv"
	"strings"

	"xshade/internal/ast"
	"xshade/internal/shader"
)

// evaluateConstExprFloat folds an expression to a float; failures yield 0
// and are reported by the caller where that matters.
func (a *Analyzer) evaluateConstExprFloat(expr ast.Expr) (float32, bool) {
	ev := ast.NewConstExprEvaluator(nil)
	value, err := ev.EvaluateExpr(expr)
	if err != nil {
		return 0, false
	}
	return float32(value.ToReal()), true
}

// analyzeSamplerValue assigns one 'Name = value;' entry of a sampler_state
// block to the harvested record, evaluating sub-expressions as constants.
func (a *Analyzer) analyzeSamplerValue(value *ast.SamplerValue, state *shader.SamplerState) {
	name := value.Name

	switch expr := value.Value.(type) {
	case *ast.LiteralExpr:
		switch name {
		case "MipLODBias":
			state.MipLODBias = parseFloatValue(expr.Value)
		case "MaxAnisotropy":
			state.MaxAnisotropy = uint32(parseIntValue(expr.Value))
		case "MinLOD":
			state.MinLOD = parseFloatValue(expr.Value)
		case "MaxLOD":
			state.MaxLOD = parseFloatValue(expr.Value)
		}
		return

	case *ast.VarAccessExpr:
		ident := expr.VarIdent.Ident
		switch name {
		case "Filter":
			if filter, ok := shader.Filters[ident]; ok {
				state.Filter = filter
			}
		case "AddressU":
			if mode, ok := shader.AddressModes[ident]; ok {
				state.AddressU = mode
			}
		case "AddressV":
			if mode, ok := shader.AddressModes[ident]; ok {
				state.AddressV = mode
			}
		case "AddressW":
			if mode, ok := shader.AddressModes[ident]; ok {
				state.AddressW = mode
			}
		case "ComparisonFunc":
			if fn, ok := shader.ComparisonFuncs[ident]; ok {
				state.ComparisonFunc = fn
			}
		}
		return
	}

	if name == "BorderColor" {
		a.analyzeSamplerBorderColor(value, state)
	}
}

func (a *Analyzer) analyzeSamplerBorderColor(value *ast.SamplerValue, state *shader.SamplerState) {
	fail := func(reason string) {
		a.warningAt(reason+" to initialize sampler value 'BorderColor'", value.Value)
	}

	switch expr := value.Value.(type) {
	case *ast.FunctionCallExpr:
		call := expr.Call
		vectorType := false
		if call.TypeDenoter != nil {
			if base, ok := call.TypeDenoter.Get().(*ast.BaseTypeDenoter); ok && base.DataType.IsVector() {
				vectorType = true
			}
		}
		if !vectorType || len(call.Arguments) != 4 {
			fail("invalid type or invalid number of arguments")
			return
		}
		for i := 0; i < 4; i++ {
			component, ok := a.evaluateConstExprFloat(call.Arguments[i])
			if !ok {
				fail("non-constant expression")
				return
			}
			state.BorderColor[i] = component
		}

	case *ast.CastExpr:
		// A scalar cast broadcasts into all four components.
		component, ok := a.evaluateConstExprFloat(expr.Expr)
		if !ok {
			fail("non-constant expression")
			return
		}
		for i := 0; i < 4; i++ {
			state.BorderColor[i] = component
		}

	case *ast.InitializerExpr:
		if len(expr.Exprs) != 4 {
			fail("invalid number of arguments")
			return
		}
		for i := 0; i < 4; i++ {
			component, ok := a.evaluateConstExprFloat(expr.Exprs[i])
			if !ok {
				fail("non-constant expression")
				return
			}
			state.BorderColor[i] = component
		}
	}
}

func parseFloatValue(spell string) float32 {
	spell = strings.TrimRight(spell, "fFhH")
	value, _ := strconv.ParseFloat(spell, 32)
	return float32(value)
}

func parseIntValue(spell string) int64 {
	value, _ := strconv.ParseInt(spell, 0, 64)
	return value
}
