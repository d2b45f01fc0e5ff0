package grid

import (
	"math"
)

type greedyJustifier struct{}

// New creates a Justifier based on greedy row packing with an
// integer-stepped height search.
func New() Justifier {
	return &greedyJustifier{}
}

func (j *greedyJustifier) Justify(c Constraints, ratios []float64) (Layout, error) {
	if err := c.Validate(); err != nil {
		return Layout{}, err
	}

	rows := c.packRows(ratios)

	placed := 0
	for _, row := range rows {
		placed += row.Count
	}
	heights := make([]float64, 0, placed)
	for _, row := range rows {
		for i := 0; i < row.Count; i++ {
			heights = append(heights, row.Height)
		}
	}

	return Layout{Rows: rows, Heights: heights, Dropped: len(ratios) - placed}, nil
}

// packRows partitions ratios into rows. Each pass carves the longest
// fittable prefix off the remaining items, sizes it, and moves on to the
// spillover. The input slice is never modified.
func (c Constraints) packRows(ratios []float64) []Row {
	if len(ratios) == 0 {
		return []Row{{}}
	}

	var rows []Row
	remaining := ratios
	for len(remaining) > 0 {
		// Peel trailing items into the spillover until the prefix passes
		// the fit pre-check.
		k := len(remaining)
		for k > 0 && !c.isFittable(remaining[:k]) {
			k--
		}
		if k == 0 {
			// Not even a single item is placeable; emit the sentinel and stop.
			rows = append(rows, Row{})
			break
		}

		height, err := c.bestHeight(remaining[:k])
		switch {
		case err == nil:
			rows = append(rows, Row{Count: k, Height: height})
		case k == 1:
			// Pin a lone unplaceable item to the minimum height rather than
			// losing it, even though the row may overflow the constraints.
			rows = append(rows, Row{Count: 1, Height: c.MinLineHeight})
		default:
			// The pre-check accepted a prefix the height search cannot size.
			// Such items are left out of the layout; callers see them in
			// Layout.Dropped.
			rows = append(rows, Row{})
		}
		remaining = remaining[k:]
	}

	return rows
}

// bestHeight finds the row height for ratios by whole-unit descent from the
// ideal height, keeping the height whose fit is tightest. Ratios are assumed
// positive.
func (c Constraints) bestHeight(ratios []float64) (float64, error) {
	if len(ratios) == 0 {
		return 0, ErrEmptyRow
	}

	var (
		fitted    bool
		best      float64
		bestSlack float64
	)
	for h := math.Min(c.idealHeight(ratios), c.MaxLineHeight); h >= c.MinLineHeight; h-- {
		slack, err := c.mayFit(ratios, h)
		if err != nil {
			if fitted {
				break
			}
			continue
		}
		if fitted && slack > bestSlack {
			// Slack grew on the way down, so the previously recorded height
			// was the tightest fit.
			return best, nil
		}
		best, bestSlack = h, slack
		fitted = true
	}
	if !fitted {
		return 0, ErrCanNotFitItems
	}
	return best, nil
}

// isFittable reports whether ratios can occupy the available width at some
// admissible height. It probes only the minimum, ideal and maximum heights;
// a cheap pre-check, not a guarantee that bestHeight succeeds.
func (c Constraints) isFittable(ratios []float64) bool {
	probes := [3]float64{c.MinLineHeight, c.idealHeight(ratios), c.MaxLineHeight}
	for _, h := range probes {
		if _, err := c.rowWidthSecure(ratios, h); err == nil {
			return true
		}
	}
	return false
}

// mayFit validates height against the line bounds and the width model, and
// returns the slack left in the row on success.
func (c Constraints) mayFit(ratios []float64, height float64) (float64, error) {
	if height < c.MinLineHeight {
		return 0, ErrLowerThanMinHeight
	}
	if height > c.MaxLineHeight {
		return 0, ErrBiggerThanMaxHeight
	}
	width, err := c.rowWidthSecure(ratios, height)
	if err != nil {
		return 0, err
	}
	return c.AvailableWidth - width, nil
}

// idealHeight is the height at which ratios would occupy exactly the
// available width, floored to a whole unit. Bounds are not considered here.
func (c Constraints) idealHeight(ratios []float64) float64 {
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	return math.Floor((c.AvailableWidth - c.Gap*float64(len(ratios)-1)) / sum)
}

// rowWidthSecure is rowWidth with the per-item and total-width checks applied.
func (c Constraints) rowWidthSecure(ratios []float64, height float64) (float64, error) {
	for _, r := range ratios {
		if height*r < c.MinItemWidth {
			return 0, ErrMinItemWidthOverload
		}
	}
	width := c.rowWidth(ratios, height)
	if width > c.AvailableWidth {
		return 0, ErrCanNotFitItems
	}
	return width, nil
}

// rowWidth is the total width of ratios rendered at height, including one
// gap between each pair of adjacent items.
func (c Constraints) rowWidth(ratios []float64, height float64) float64 {
	if len(ratios) == 0 {
		return 0
	}
	var width float64
	for _, r := range ratios {
		width += height * r
	}
	return width + c.Gap*float64(len(ratios)-1)
}
