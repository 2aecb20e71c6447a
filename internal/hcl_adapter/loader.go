package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/mapdoc"
)

// Loader is the HCL-specific implementation of the mapdoc.Loader interface.
// Files ending in .json are read with the HCL JSON syntax, everything else
// with native HCL syntax.
type Loader struct{}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the project file at path and translates every block, in
// document order, into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*mapdoc.Document, error) {
	logger := ctxlog.FromContext(ctx).With("project_file", path)
	logger.Debug("HCL loader started.")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path %s: %w", path, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.EqualFold(filepath.Ext(abs), ".json") {
		file, diags = parser.ParseJSON(src, abs)
	} else {
		file, diags = parser.ParseHCL(src, abs)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", path, diags)
	}

	name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	doc := &mapdoc.Document{
		Path:    abs,
		Dir:     filepath.Dir(abs),
		Project: mapdoc.Project{Name: name, Title: name, CRS: defaultCRS},
	}

	seenProject := false
	for _, block := range content.Blocks {
		switch block.Type {
		case "project":
			if seenProject {
				return nil, fmt.Errorf("%s: only one project block is allowed", block.DefRange)
			}
			seenProject = true
			if err := l.translateProject(block, &doc.Project); err != nil {
				return nil, err
			}
		case "layer":
			layer, err := l.translateLayer(block, doc.Dir)
			if err != nil {
				return nil, err
			}
			if doc.Layer(layer.Name) != nil {
				return nil, fmt.Errorf("%s: duplicate layer %q", block.DefRange, layer.Name)
			}
			doc.Layers = append(doc.Layers, layer)
		case "layout":
			// Layouts are translated once every layer is known, so a map
			// item may name a layer declared further down the file.
		}
	}

	for _, block := range content.Blocks {
		if block.Type != "layout" {
			continue
		}
		layout, err := l.translateLayout(ctx, block, doc)
		if err != nil {
			return nil, err
		}
		for _, other := range doc.Layouts {
			if other.Name == layout.Name {
				return nil, fmt.Errorf("%s: duplicate layout %q", block.DefRange, layout.Name)
			}
		}
		doc.Layouts = append(doc.Layouts, layout)
	}

	logger.Debug("HCL loading complete.", "crs", doc.Project.CRS, "layers", len(doc.Layers), "layouts", len(doc.Layouts))
	return doc, nil
}

// decodeBlock decodes a block body into target, wrapping diagnostics with the
// block's location.
func decodeBlock(block *hcl.Block, target any) error {
	if diags := gohcl.DecodeBody(block.Body, nil, target); diags.HasErrors() {
		return fmt.Errorf("%s %q: %w", block.Type, block.Labels[0], diags)
	}
	return nil
}
