package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-spatial/proj/core"
	"github.com/go-spatial/proj/mlog"
	"github.com/go-spatial/proj/support"
	"github.com/paulmach/orb"

	// registers the projection operations (utm, merc, eqc, ...)
	_ "github.com/go-spatial/proj/operations"
)

func init() {
	// conversion errors surface as ErrTransformFailed; keep proj's own logger quiet
	mlog.InfoEnabled = false
	mlog.ErrorEnabled = false
}

// projDef is an EPSG code that go-spatial/proj can build from a proj string.
type projDef struct {
	name string
	proj string
}

var projStrings = map[int]projDef{
	3395: {"WGS 84 / World Mercator", "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84"},
	4087: {"WGS 84 / World Equidistant Cylindrical", "+proj=eqc +lat_ts=0 +lat_0=0 +lon_0=0 +x_0=0 +y_0=0 +datum=WGS84"},
}

// utmDef returns the definition of the WGS 84 UTM zone behind code
// (32601-32660 north, 32701-32760 south).
func utmDef(code int) (projDef, bool) {
	var south bool
	switch {
	case code >= 32601 && code <= 32660:
	case code >= 32701 && code <= 32760:
		south = true
	default:
		return projDef{}, false
	}
	zone := code % 100
	if south {
		return projDef{
			name: fmt.Sprintf("WGS 84 / UTM zone %dS", zone),
			proj: fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84", zone),
		}, true
	}
	return projDef{
		name: fmt.Sprintf("WGS 84 / UTM zone %dN", zone),
		proj: fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84", zone),
	}, true
}

var (
	projMu    sync.Mutex
	projCache = map[int]CRS{}
)

// lookupEPSG builds (once) the proj-backed CRS for an "EPSG:<code>" key.
func lookupEPSG(key string) (CRS, bool, error) {
	rest, ok := strings.CutPrefix(key, "EPSG:")
	if !ok {
		return CRS{}, false, nil
	}
	code, err := strconv.Atoi(rest)
	if err != nil {
		return CRS{}, false, nil
	}
	def, ok := projStrings[code]
	if !ok {
		if def, ok = utmDef(code); !ok {
			return CRS{}, false, nil
		}
	}

	projMu.Lock()
	defer projMu.Unlock()
	if crs, ok := projCache[code]; ok {
		return crs, true, nil
	}
	conv, err := newConverter(def.proj)
	if err != nil {
		return CRS{}, true, fmt.Errorf("%w: EPSG:%d: %v", ErrUnknownCRS, code, err)
	}
	crs := CRS{
		ID:        "EPSG:" + strconv.Itoa(code),
		Name:      def.name,
		toWGS84:   conv.inverse,
		fromWGS84: conv.forward,
	}
	projCache[code] = crs
	return crs, true, nil
}

// converter adapts a go-spatial/proj operation to orb.Projection. Failed
// conversions yield NaN so callers' finiteness checks reject them.
type converter struct {
	op core.IConvertLPToXY
}

func newConverter(projString string) (*converter, error) {
	ps, err := support.NewProjString(projString)
	if err != nil {
		return nil, err
	}
	_, opx, err := core.NewSystem(ps)
	if err != nil {
		return nil, err
	}
	if !opx.GetDescription().IsConvertLPToXY() {
		return nil, fmt.Errorf("projection %q does not convert lon/lat to x/y", projString)
	}
	return &converter{op: opx.(core.IConvertLPToXY)}, nil
}

func (c *converter) forward(p orb.Point) orb.Point {
	if !finite(p) {
		return nan()
	}
	xy, err := c.op.Forward(&core.CoordLP{Lam: support.DDToR(p[0]), Phi: support.DDToR(p[1])})
	if err != nil || xy == nil {
		return nan()
	}
	return orb.Point{xy.X, xy.Y}
}

func (c *converter) inverse(p orb.Point) orb.Point {
	if !finite(p) {
		return nan()
	}
	lp, err := c.op.Inverse(&core.CoordXY{X: p[0], Y: p[1]})
	if err != nil || lp == nil {
		return nan()
	}
	return orb.Point{support.RToDD(lp.Lam), support.RToDD(lp.Phi)}
}

func nan() orb.Point { return orb.Point{math.NaN(), math.NaN()} }
