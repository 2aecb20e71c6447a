// This file contains the logic for translating HCL schema structs into the
// format-agnostic project model defined in the mapdoc package.

package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/mapdoc"
)

const (
	defaultCRS         = "EPSG:4326"
	defaultStrokeColor = "#000000"
	defaultStrokeWidth = 0.26
	defaultPointRadius = 1.0
	defaultPageSize    = "A4"
	defaultFontFamily  = "Sans"
	defaultFontSize    = 10.0
)

// translateProject applies a `project` block on top of the defaults in p.
func (l *Loader) translateProject(block *hcl.Block, p *mapdoc.Project) error {
	var pb ProjectBlock
	if err := decodeBlock(block, &pb); err != nil {
		return err
	}
	p.Name = block.Labels[0]
	p.Title = stringOr(pb.Title, p.Name)
	p.CRS = stringOr(pb.CRS, defaultCRS)
	return nil
}

// translateLayer converts a `layer` block, resolving its source against dir.
func (l *Loader) translateLayer(block *hcl.Block, dir string) (*mapdoc.Layer, error) {
	var lb LayerBlock
	if err := decodeBlock(block, &lb); err != nil {
		return nil, err
	}
	name := block.Labels[0]

	source := lb.Source
	if source == "" {
		return nil, fmt.Errorf("layer %q: source must not be empty", name)
	}
	if !filepath.IsAbs(source) {
		source = filepath.Join(dir, source)
	}

	stroke, err := parseColor(stringOr(lb.StrokeColor, defaultStrokeColor))
	if err != nil {
		return nil, fmt.Errorf("layer %q: stroke_color: %w", name, err)
	}
	fill, err := parseColor(stringOr(lb.FillColor, "none"))
	if err != nil {
		return nil, fmt.Errorf("layer %q: fill_color: %w", name, err)
	}

	return &mapdoc.Layer{
		Name:   name,
		Source: source,
		CRS:    stringOr(lb.CRS, defaultCRS),
		Style: mapdoc.Style{
			Stroke:      stroke,
			Fill:        fill,
			StrokeWidth: floatOr(lb.StrokeWidth, defaultStrokeWidth),
			PointRadius: floatOr(lb.PointRadius, defaultPointRadius),
		},
		Visible: boolOr(lb.Visible, true),
	}, nil
}

// translateLayout converts a `layout` block and its items, keeping item order.
func (l *Loader) translateLayout(ctx context.Context, block *hcl.Block, doc *mapdoc.Document) (*mapdoc.Layout, error) {
	name := block.Labels[0]
	ctx, logger := ctxlog.With(ctx, "layout", name)

	var lb LayoutBlock
	if err := decodeBlock(block, &lb); err != nil {
		return nil, err
	}

	w, h, err := mapdoc.PageSize(stringOr(lb.PageSize, defaultPageSize), stringOr(lb.Orientation, "portrait"))
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	if width := floatOr(lb.Width, 0); width > 0 {
		w = width
	}
	if height := floatOr(lb.Height, 0); height > 0 {
		h = height
	}

	layout := &mapdoc.Layout{Name: name, Width: w, Height: h}

	content, diags := lb.Remain.Content(layoutItemSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("layout %q: %w", name, diags)
	}
	for _, itemBlock := range content.Blocks {
		var item mapdoc.Item
		switch itemBlock.Type {
		case "map":
			item, err = l.translateMap(itemBlock, doc)
		case "label":
			item, err = l.translateLabel(ctx, itemBlock)
		case "shape":
			item, err = l.translateShape(itemBlock)
		}
		if err != nil {
			return nil, fmt.Errorf("layout %q: %w", name, err)
		}
		layout.Items = append(layout.Items, item)
	}

	logger.Debug("Translated layout.", "items", len(layout.Items), "width_mm", w, "height_mm", h)
	return layout, nil
}

func (l *Loader) translateMap(block *hcl.Block, doc *mapdoc.Document) (*mapdoc.MapItem, error) {
	var mb MapBlock
	if err := decodeBlock(block, &mb); err != nil {
		return nil, err
	}
	name := block.Labels[0]

	box, err := parseBox(mb.Position)
	if err != nil {
		return nil, fmt.Errorf("map %q: position: %w", name, err)
	}
	bg, err := parseColor(stringOr(mb.Background, "#ffffff"))
	if err != nil {
		return nil, fmt.Errorf("map %q: background: %w", name, err)
	}

	item := &mapdoc.MapItem{
		Name:       name,
		Box:        box,
		Background: bg,
		Frame:      boolOr(mb.Frame, true),
	}

	if mb.Layers == nil {
		for _, layer := range doc.Layers {
			if layer.Visible {
				item.Layers = append(item.Layers, layer.Name)
			}
		}
	} else {
		for _, layerName := range *mb.Layers {
			if doc.Layer(layerName) == nil {
				return nil, fmt.Errorf("map %q: unknown layer %q", name, layerName)
			}
			item.Layers = append(item.Layers, layerName)
		}
	}

	if mb.Extent != nil {
		if len(mb.Extent) != 4 {
			return nil, fmt.Errorf("map %q: extent needs 4 numbers [xmin, ymin, xmax, ymax], got %d", name, len(mb.Extent))
		}
		ext := [4]float64(mb.Extent)
		item.Extent = &ext
	}
	return item, nil
}

func (l *Loader) translateLabel(ctx context.Context, block *hcl.Block) (*mapdoc.LabelItem, error) {
	var lb LabelBlock
	if err := decodeBlock(block, &lb); err != nil {
		return nil, err
	}
	name := block.Labels[0]

	box, err := parseBox(lb.Position)
	if err != nil {
		return nil, fmt.Errorf("label %q: position: %w", name, err)
	}
	c, err := parseColor(stringOr(lb.Color, "#000000"))
	if err != nil {
		return nil, fmt.Errorf("label %q: color: %w", name, err)
	}
	align, err := mapdoc.ParseAlignment(stringOr(lb.Align, ""))
	if err != nil {
		return nil, fmt.Errorf("label %q: %w", name, err)
	}
	size := floatOr(lb.FontSize, defaultFontSize)
	if size <= 0 {
		return nil, fmt.Errorf("label %q: font_size must be positive, got %g", name, size)
	}

	var text mapdoc.Template = mapdoc.StaticText("")
	if isExprDefined(ctx, lb.Text, "text") {
		if err := checkTemplate(lb.Text); err != nil {
			return nil, fmt.Errorf("label %q: %w", name, err)
		}
		text = newExprTemplate(lb.Text)
	}

	return &mapdoc.LabelItem{
		Name:       name,
		Box:        box,
		Text:       text,
		FontFamily: stringOr(lb.FontFamily, defaultFontFamily),
		FontSize:   size,
		Color:      c,
		Align:      align,
	}, nil
}

func (l *Loader) translateShape(block *hcl.Block) (*mapdoc.ShapeItem, error) {
	var sb ShapeBlock
	if err := decodeBlock(block, &sb); err != nil {
		return nil, err
	}
	name := block.Labels[0]

	box, err := parseBox(sb.Position)
	if err != nil {
		return nil, fmt.Errorf("shape %q: position: %w", name, err)
	}
	stroke, err := parseColor(stringOr(sb.StrokeColor, defaultStrokeColor))
	if err != nil {
		return nil, fmt.Errorf("shape %q: stroke_color: %w", name, err)
	}
	return &mapdoc.ShapeItem{
		Name:        name,
		Box:         box,
		Stroke:      stroke,
		StrokeWidth: floatOr(sb.StrokeWidth, defaultStrokeWidth),
	}, nil
}
