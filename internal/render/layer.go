package render

import (
	"fmt"
	"os"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/mapdoc"
)

// feature is one indexed geometry of a layer, in the layer's CRS.
type feature struct {
	index int
	geom  orb.Geometry
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (f *feature) Bounds() rtreego.Rect {
	return f.rect
}

// Layer is a loaded vector layer with a spatial index over its features.
type Layer struct {
	def    *mapdoc.Layer
	crs    geo.CRS
	tree   *rtreego.Rtree
	bound  orb.Bound
	nfeat  int
	hasAny bool
}

// loadLayer reads a GeoJSON FeatureCollection and indexes every feature
// that carries a geometry.
func loadLayer(def *mapdoc.Layer) (*Layer, error) {
	crs, err := geo.Lookup(def.CRS)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", def.Name, err)
	}
	data, err := os.ReadFile(def.Source)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", def.Name, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("layer %q: failed to decode GeoJSON %s: %w", def.Name, def.Source, err)
	}

	l := &Layer{def: def, crs: crs}
	var objs []rtreego.Spatial
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{b.Min[0], b.Min[1]},
			rtreego.Point{b.Max[0], b.Max[1]},
		)
		if err != nil {
			return nil, fmt.Errorf("layer %q: feature %d: %w", def.Name, len(objs), err)
		}
		objs = append(objs, &feature{index: len(objs), geom: f.Geometry, rect: rect})
		if l.hasAny {
			l.bound = l.bound.Union(b)
		} else {
			l.bound, l.hasAny = b, true
		}
	}
	l.nfeat = len(objs)
	l.tree = rtreego.NewTree(2, 25, 50, objs...)
	return l, nil
}

// Name is the layer name.
func (l *Layer) Name() string { return l.def.Name }

// Len is the number of indexed features.
func (l *Layer) Len() int { return l.nfeat }

// Extent returns the bounds of all features transformed into dst, and false
// for an empty layer.
func (l *Layer) Extent(dst geo.CRS) (geo.Rect, bool, error) {
	if !l.hasAny {
		return geo.Rect{}, false, nil
	}
	tr, err := geo.NewTransform(l.crs, dst)
	if err != nil {
		return geo.Rect{}, false, err
	}
	b, err := tr.TransformBoundingBox(l.bound)
	if err != nil {
		return geo.Rect{}, false, fmt.Errorf("layer %q: %w", l.def.Name, err)
	}
	return b, true, nil
}

// Query returns copies of the features intersecting extent, which is given
// in dst. The geometries are transformed into dst and kept in file order.
func (l *Layer) Query(extent geo.Rect, dst geo.CRS) ([]orb.Geometry, error) {
	if !l.hasAny {
		return nil, nil
	}
	toLayer, err := geo.NewTransform(dst, l.crs)
	if err != nil {
		return nil, err
	}
	fromLayer, err := geo.NewTransform(l.crs, dst)
	if err != nil {
		return nil, err
	}
	q, err := toLayer.TransformBoundingBox(extent)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.def.Name, err)
	}
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{q.Min[0], q.Min[1]},
		rtreego.Point{q.Max[0], q.Max[1]},
	)
	if err != nil {
		return nil, err
	}

	hits := l.tree.SearchIntersect(rect)
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].(*feature).index < hits[j].(*feature).index
	})

	out := make([]orb.Geometry, 0, len(hits))
	for _, hit := range hits {
		g := hit.(*feature).geom
		if fromLayer.IsIdentity() {
			out = append(out, orb.Clone(g))
			continue
		}
		out = append(out, fromLayer.Geometry(g))
	}
	return out, nil
}
