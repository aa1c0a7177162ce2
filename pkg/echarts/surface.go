package echarts

// Surface is the element a chart is laid out on.
// Its client size is what the layout measures; a zero size renders nothing.
type Surface struct {
	width  int
	height int
}

// NewSurface creates a surface with the given client size in pixels.
func NewSurface(width, height int) *Surface {
	return &Surface{width: width, height: height}
}

// ClientWidth returns the measurable width of the surface.
func (s *Surface) ClientWidth() int { return s.width }

// ClientHeight returns the measurable height of the surface.
func (s *Surface) ClientHeight() int { return s.height }
