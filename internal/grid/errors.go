package grid

import "errors"

var (
	// ErrMinHeightAboveMax is returned when the minimum line height exceeds the maximum.
	ErrMinHeightAboveMax = errors.New("min line height can not be bigger than max line height")
	// ErrWidthBelowMinItem is returned when the container is narrower than a single minimum-width item.
	ErrWidthBelowMinItem = errors.New("available width can not be less than min item width")

	// ErrMinItemWidthOverload is returned when a candidate height would render
	// some item narrower than the minimum item width.
	ErrMinItemWidthOverload = errors.New("item rendered narrower than min item width")
	// ErrLowerThanMinHeight is returned for candidate heights below the minimum line height.
	ErrLowerThanMinHeight = errors.New("height is lower than min line height")
	// ErrBiggerThanMaxHeight is returned for candidate heights above the maximum line height.
	ErrBiggerThanMaxHeight = errors.New("height is bigger than max line height")
	// ErrCanNotFitItems is returned when no admissible height lets the items occupy the available width.
	ErrCanNotFitItems = errors.New("can not fit items into the available width")
	// ErrEmptyRow is returned when the height search is invoked on an empty row.
	ErrEmptyRow = errors.New("can not size an empty row")
)
