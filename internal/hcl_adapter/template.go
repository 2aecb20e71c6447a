package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/exportmap/internal/mapdoc"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// exprTemplate is a label text expression evaluated at render time.
type exprTemplate struct {
	expr hcl.Expression
}

func newExprTemplate(expr hcl.Expression) *exprTemplate {
	return &exprTemplate{expr: expr}
}

type projectVars struct {
	Title string `cty:"title"`
	CRS   string `cty:"crs"`
}

type layoutVars struct {
	Name string `cty:"name"`
}

type mapVars struct {
	Extent string `cty:"extent"`
}

type exportVars struct {
	Time string `cty:"time"`
}

// Render evaluates the expression with the project, layout, map and export
// objects in scope and converts the result to a string.
func (t *exprTemplate) Render(vars mapdoc.TemplateVars) (string, error) {
	evalCtx, err := t.evalContext(vars)
	if err != nil {
		return "", err
	}

	val, diags := t.expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("failed to evaluate label text: %w", diags)
	}
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("label text at %s is not known", t.expr.Range())
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("label text at %s must be a string: %w", t.expr.Range(), err)
	}
	return str.AsString(), nil
}

func (t *exprTemplate) evalContext(vars mapdoc.TemplateVars) (*hcl.EvalContext, error) {
	scope := map[string]any{
		"project": projectVars{Title: vars.ProjectTitle, CRS: vars.ProjectCRS},
		"layout":  layoutVars{Name: vars.LayoutName},
		"map":     mapVars{Extent: vars.MapExtent},
		"export":  exportVars{Time: vars.ExportTime},
	}
	variables := make(map[string]cty.Value, len(scope))
	for name, v := range scope {
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return nil, fmt.Errorf("failed to type template variable %q: %w", name, err)
		}
		val, err := gocty.ToCtyValue(v, ty)
		if err != nil {
			return nil, fmt.Errorf("failed to build template variable %q: %w", name, err)
		}
		variables[name] = val
	}
	return &hcl.EvalContext{Variables: variables}, nil
}
