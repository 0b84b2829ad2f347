package layout

import (
	"fmt"
	"strings"

	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/reportlayout/config"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/utils"
)

// Standard page sizes in points, in portrait orientation
var pageSizes = map[string][2]utils.Fl{
	"a3":        {842, 1191},
	"a4":        {595, 842},
	"a5":        {420, 595},
	"a6":        {298, 420},
	"b4":        {709, 1001},
	"b5":        {499, 709},
	"letter":    {612, 792},
	"legal":     {612, 1008},
	"tabloid":   {792, 1224},
	"executive": {522, 756},
}

// PageGeometry is the physical page. All values are in micro-points.
type PageGeometry struct {
	Width, Height Unit
	Margins       bo.Edges
}

type Unit = bo.Unit

// NewPageGeometry resolves the page configuration.
// An unknown named size or an empty usable area is a [FatalLayoutError].
func NewPageGeometry(cfg config.PageConfig) (PageGeometry, error) {
	width, height := utils.Fl(cfg.Width), utils.Fl(cfg.Height)
	if cfg.Size != "" {
		size, ok := pageSizes[strings.ToLower(cfg.Size)]
		if !ok {
			return PageGeometry{}, &FatalLayoutError{Reason: fmt.Sprintf("unknown page size %q", cfg.Size)}
		}
		width, height = size[0], size[1]
	}
	if strings.EqualFold(cfg.Orientation, "landscape") && width < height {
		width, height = height, width
	}
	out := PageGeometry{
		Width:  bo.FromPoints(width),
		Height: bo.FromPoints(height),
	}
	out.Margins[pr.STop] = bo.FromPoints(utils.Fl(cfg.Margins.Top))
	out.Margins[pr.SRight] = bo.FromPoints(utils.Fl(cfg.Margins.Right))
	out.Margins[pr.SBottom] = bo.FromPoints(utils.Fl(cfg.Margins.Bottom))
	out.Margins[pr.SLeft] = bo.FromPoints(utils.Fl(cfg.Margins.Left))
	return out, out.Validate()
}

// Validate returns a [FatalLayoutError] if the page has no usable area.
func (g PageGeometry) Validate() error {
	for _, m := range g.Margins {
		if m < 0 {
			return &FatalLayoutError{Reason: fmt.Sprintf("negative page margin in %s", g)}
		}
	}
	if g.UsableWidth() <= 0 || g.UsableHeight() <= 0 {
		return &FatalLayoutError{Reason: fmt.Sprintf("empty usable page area in %s", g)}
	}
	return nil
}

// UsableWidth returns the width between the margins.
func (g PageGeometry) UsableWidth() Unit { return g.Width - g.Margins.Horizontal() }

// UsableHeight returns the height between the margins.
func (g PageGeometry) UsableHeight() Unit { return g.Height - g.Margins.Vertical() }

func (g PageGeometry) String() string {
	return fmt.Sprintf("page %sx%s (margins %s %s %s %s)", g.Width, g.Height,
		g.Margins[0], g.Margins[1], g.Margins[2], g.Margins[3])
}
