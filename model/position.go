package model

type Position struct {
	DTO
	ShelfId     uint    `gorm:"not null;index;uniqueIndex:idx_shelf_code" json:"shelfId"`
	Shelf       Shelf   `gorm:"foreignKey:ShelfId;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Row         int     `gorm:"column:row_index;not null" json:"row"`    // 0-based, rendered as a letter
	Column      int     `gorm:"column:col_index;not null" json:"column"` // 1-based
	Code        string  `gorm:"not null;size:8;uniqueIndex:idx_shelf_code" json:"code"`
	Capacity    int     `gorm:"not null" validate:"required,min=1" json:"capacity"`
	Occupancy   int     `gorm:"not null;default:0" json:"occupancy"`
	IsAvailable bool    `gorm:"not null;default:true" json:"isAvailable"`
	ClientId    *uint   `json:"clientId"` // overrides the shelf assignment when set
	Client      *Client `gorm:"foreignKey:ClientId;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"client,omitempty"`
	AllowView   bool    `gorm:"not null;default:false" json:"allowView"`
	Version     uint    `gorm:"not null;default:1" json:"version"`
}

type Positions []Position

type AdjustOccupancyInput struct {
	Delta int    `json:"delta" validate:"required"`
	Note  string `json:"note" validate:"max=255"`
}

type AssignPositionInput struct {
	ClientId    *uint `json:"clientId"`
	ClearClient bool  `json:"clearClient"`
	AllowView   *bool `json:"allowView"`
	IsAvailable *bool `json:"isAvailable"`
	Version     uint  `json:"version" validate:"required"`
}

// BulkAssignInput applies one assignment payload to many positions.
// Each id is attempted independently (best effort, reported per id).
type BulkAssignInput struct {
	IDs         []uint `json:"ids" validate:"required,min=1,dive,required"`
	ClientId    *uint  `json:"clientId"`
	ClearClient bool   `json:"clearClient"`
	AllowView   *bool  `json:"allowView"`
}

type BulkAssignFailure struct {
	ID   uint   `json:"id"`
	Kind string `json:"kind"`
}

type BulkAssignResult struct {
	Succeeded []uint              `json:"succeeded"`
	Failed    []BulkAssignFailure `json:"failed"`
	Summary   string              `json:"summary"` // "M of N succeeded"
}

// PositionGrid is the 2D read model of a shelf: Rows×Columns cells,
// nil where no governed position exists (possible after a shrink).
type PositionGrid struct {
	Shelf     ShelfSummary  `json:"shelf"`
	Grid      [][]*Position `json:"grid"`
	Positions []Position    `json:"positions"`
}
