package grid

// Constraints bounds a single layout computation. Widths and heights share
// one arbitrary unit, pixels in practice.
type Constraints struct {
	// AvailableWidth is the container width every row tries to fill.
	AvailableWidth float64
	// MinLineHeight and MaxLineHeight bound the admissible row heights.
	MinLineHeight float64
	MaxLineHeight float64
	// MinItemWidth is the narrowest rendered width allowed for any item.
	MinItemWidth float64
	// Gap is the spacing between adjacent items in a row, not applied
	// before the first or after the last item.
	Gap float64
}

// Validate reports the first violated constraint invariant, or nil when the
// constraints are usable.
func (c Constraints) Validate() error {
	if c.MinLineHeight > c.MaxLineHeight {
		return ErrMinHeightAboveMax
	}
	if c.AvailableWidth < c.MinItemWidth {
		return ErrWidthBelowMinItem
	}
	return nil
}

// Row is a contiguous run of input items sharing one rendered height.
// A zero-count row is a sentinel meaning "no items" and carries height 0.
type Row struct {
	Count  int
	Height float64
}

// Layout is the result of justifying one ratio sequence. Heights carries one
// value per placed input item, in input order; Dropped counts input items the
// packer could not place.
type Layout struct {
	Rows    []Row
	Heights []float64
	Dropped int
}

// Justifier describes the behaviour required from a justified-layout engine.
type Justifier interface {
	Justify(c Constraints, ratios []float64) (Layout, error)
}
