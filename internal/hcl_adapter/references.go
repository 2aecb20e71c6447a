package hcl_adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// templateScope is every variable path label text may reference.
var templateScope = map[string][]string{
	"project": {"title", "crs"},
	"layout":  {"name"},
	"map":     {"extent"},
	"export":  {"time"},
}

// traversalKey renders a traversal the way it is written, e.g. project.title.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// templateDeps returns the sorted, unique variable references and function
// calls of expr.
func templateDeps(expr hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	for _, t := range expr.Variables() {
		traversals[traversalKey(t)] = t
	}

	functions := make(map[string]struct{})
	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		hclsyntax.VisitAll(syntaxExpr, func(node hclsyntax.Node) hcl.Diagnostics {
			if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
				functions[call.Name] = struct{}{}
			}
			return nil
		})
	}

	keys := make([]string, 0, len(traversals))
	for k := range traversals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	refs := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, traversals[k])
	}

	funcs := make([]string, 0, len(functions))
	for f := range functions {
		funcs = append(funcs, f)
	}
	sort.Strings(funcs)
	return refs, funcs
}

// checkTemplate rejects label text that calls functions or references a
// variable outside templateScope, so the mistake surfaces when the project
// is opened instead of at export time.
func checkTemplate(expr hcl.Expression) error {
	refs, funcs := templateDeps(expr)
	if len(funcs) > 0 {
		return fmt.Errorf("text at %s: functions are not available: %s", expr.Range(), strings.Join(funcs, ", "))
	}
	for _, ref := range refs {
		if !inTemplateScope(ref) {
			return fmt.Errorf("text at %s: unknown variable %s", ref.SourceRange(), traversalKey(ref))
		}
	}
	return nil
}

func inTemplateScope(t hcl.Traversal) bool {
	attrs, ok := templateScope[t.RootName()]
	if !ok {
		return false
	}
	if len(t) < 2 {
		return true
	}
	attr, ok := t[1].(hcl.TraverseAttr)
	if !ok {
		return false
	}
	for _, a := range attrs {
		if a == attr.Name {
			return true
		}
	}
	return false
}
