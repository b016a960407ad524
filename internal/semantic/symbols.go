package semantic

import (
	"fmt"

	"xshade/internal/ast"
)

// SymbolTable is a stack of frames mapping identifiers to declarations.
// Function declarations group into overload sets under one name.
type SymbolTable struct {
	frames []map[string][]ast.Node

	// OnOverride is invoked when a declaration shadows one from an outer
	// frame.
	OnOverride func(ident string, prev ast.Node)
}

// NewSymbolTable creates an empty table; callers open the root scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// OpenScope pushes a new innermost frame.
func (st *SymbolTable) OpenScope() {
	st.frames = append(st.frames, make(map[string][]ast.Node))
}

// CloseScope pops the innermost frame.
func (st *SymbolTable) CloseScope() {
	st.frames = st.frames[:len(st.frames)-1]
}

// NumScopes returns the current scope depth.
func (st *SymbolTable) NumScopes() int { return len(st.frames) }

// Register enters a declaration in the innermost frame. Redeclaring a
// non-function identifier in the same frame is an error; function
// declarations sharing a name form an overload group.
func (st *SymbolTable) Register(ident string, node ast.Node) error {
	if ident == "" {
		return nil
	}
	frame := st.frames[len(st.frames)-1]

	if group, ok := frame[ident]; ok {
		_, prevIsFunc := group[0].(*ast.FunctionDecl)
		_, newIsFunc := node.(*ast.FunctionDecl)
		if prevIsFunc && newIsFunc {
			frame[ident] = append(group, node)
			return nil
		}
		return fmt.Errorf("identifier '%s' already declared in this scope", ident)
	}

	if st.OnOverride != nil {
		for i := len(st.frames) - 2; i >= 0; i-- {
			if prev, ok := st.frames[i][ident]; ok {
				st.OnOverride(ident, prev[0])
				break
			}
		}
	}

	frame[ident] = []ast.Node{node}
	return nil
}

// Fetch walks outward and returns the first declaration bound to the
// identifier, or nil.
func (st *SymbolTable) Fetch(ident string) ast.Node {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if group, ok := st.frames[i][ident]; ok {
			return group[0]
		}
	}
	return nil
}

// FetchAll returns the full overload group for the identifier, innermost
// frame first.
func (st *SymbolTable) FetchAll(ident string) []ast.Node {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if group, ok := st.frames[i][ident]; ok {
			return group
		}
	}
	return nil
}

// FetchType narrows the result to type declarations (structs and aliases).
func (st *SymbolTable) FetchType(ident string) ast.Node {
	switch node := st.Fetch(ident).(type) {
	case *ast.StructDecl, *ast.AliasDecl:
		return node
	}
	return nil
}

// FetchStructDecl narrows the result to a structure declaration, following
// one level of aliasing.
func (st *SymbolTable) FetchStructDecl(ident string) *ast.StructDecl {
	switch node := st.Fetch(ident).(type) {
	case *ast.StructDecl:
		return node
	case *ast.AliasDecl:
		if structDen, ok := node.TypeDenoter.Get().(*ast.StructTypeDenoter); ok {
			return structDen.StructRef
		}
	}
	return nil
}

// Idents returns every identifier visible from the current scope; used for
// typo suggestions.
func (st *SymbolTable) Idents() []string {
	seen := make(map[string]bool)
	var idents []string
	for i := len(st.frames) - 1; i >= 0; i-- {
		for ident := range st.frames[i] {
			if !seen[ident] {
				seen[ident] = true
				idents = append(idents, ident)
			}
		}
	}
	return idents
}
