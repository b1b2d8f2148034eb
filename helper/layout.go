package helper

import "lab_storage/model"

// Floor-plan rendering constants shared with every client: one grid
// cell is LayoutBaseUnit layout-units on screen at scale 1.0.
const (
	LayoutBaseUnit = 50.0
	LayoutPadding  = 40.0
	LayoutMinScale = 0.3
	LayoutMaxScale = 1.0
)

// FitScale picks the largest scale in [LayoutMinScale, LayoutMaxScale]
// at which every shelf footprint and the entrance point fit the given
// drawable viewport. Callers subtract their padding from the viewport
// before calling. Pure: identical inputs always produce the same scale.
func FitScale(shelves []model.ShelfSummary, entranceX, entranceY, viewportW, viewportH float64) float64 {
	extentW := entranceX
	extentH := entranceY
	for _, s := range shelves {
		right := s.X + float64(s.Columns)*LayoutBaseUnit
		bottom := s.Y + float64(s.Rows)*LayoutBaseUnit
		if right > extentW {
			extentW = right
		}
		if bottom > extentH {
			extentH = bottom
		}
	}
	if extentW <= 0 || extentH <= 0 {
		return LayoutMaxScale
	}

	scale := LayoutMaxScale
	if s := viewportW / extentW; s < scale {
		scale = s
	}
	if s := viewportH / extentH; s < scale {
		scale = s
	}
	if scale < LayoutMinScale {
		scale = LayoutMinScale
	}
	return scale
}
