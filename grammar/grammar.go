// Package grammar defines the integer constant-expression grammar the
// preprocessor evaluates for #if and #elif directives. Operator semantics
// match the constant-expression evaluator of the analyzer.
package grammar

type Condition struct {
	Expr *Ternary `@@`
}

type Ternary struct {
	Cond *OrExpr  `@@`
	Then *Ternary `( "?" @@`
	Else *Ternary `  ":" @@ )?`
}

type OrExpr struct {
	Lhs *AndExpr   `@@`
	Rhs []*AndExpr `( "||" @@ )*`
}

type AndExpr struct {
	Lhs *BitOrExpr   `@@`
	Rhs []*BitOrExpr `( "&&" @@ )*`
}

type BitOrExpr struct {
	Lhs *BitXorExpr   `@@`
	Rhs []*BitXorExpr `( "|" @@ )*`
}

type BitXorExpr struct {
	Lhs *BitAndExpr   `@@`
	Rhs []*BitAndExpr `( "^" @@ )*`
}

type BitAndExpr struct {
	Lhs *EqualityExpr   `@@`
	Rhs []*EqualityExpr `( "&" @@ )*`
}

type EqualityExpr struct {
	Lhs *RelationExpr  `@@`
	Rhs []*EqualityTail `@@*`
}

type EqualityTail struct {
	Op  string        `@("==" | "!=")`
	Rhs *RelationExpr `@@`
}

type RelationExpr struct {
	Lhs *ShiftExpr      `@@`
	Rhs []*RelationTail `@@*`
}

type RelationTail struct {
	Op  string     `@("<=" | ">=" | "<" | ">")`
	Rhs *ShiftExpr `@@`
}

type ShiftExpr struct {
	Lhs *AddExpr     `@@`
	Rhs []*ShiftTail `@@*`
}

type ShiftTail struct {
	Op  string   `@("<<" | ">>")`
	Rhs *AddExpr `@@`
}

type AddExpr struct {
	Lhs *MulExpr   `@@`
	Rhs []*AddTail `@@*`
}

type AddTail struct {
	Op  string   `@("+" | "-")`
	Rhs *MulExpr `@@`
}

type MulExpr struct {
	Lhs *UnaryExpr `@@`
	Rhs []*MulTail `@@*`
}

type MulTail struct {
	Op  string     `@("*" | "/" | "%")`
	Rhs *UnaryExpr `@@`
}

type UnaryExpr struct {
	Op      string     `( @("!" | "~" | "+" | "-")`
	Operand *UnaryExpr `  @@ )`
	Primary *Primary   `| @@`
}

type Primary struct {
	Int     *string  `  @Int`
	Ident   *string  `| @Ident`
	Bracket *Ternary `| "(" @@ ")"`
}
