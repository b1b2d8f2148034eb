package model

type Laboratory struct {
	DTO
	Slug      string  `gorm:"uniqueIndex" json:"slug"`
	Name      string  `gorm:"not null;unique" validate:"required" json:"name"`
	EntranceX float64 `gorm:"not null;default:0" json:"entranceX"`
	EntranceY float64 `gorm:"not null;default:0" json:"entranceY"`
	Shelves   []Shelf `gorm:"foreignKey:LabId" json:"shelves,omitempty"`
}

type Laboratories []Laboratory

// StorageLayout is the floor-plan read model: entrance point plus every
// shelf with coordinates and utilization.
type StorageLayout struct {
	LabId          uint           `json:"labId"`
	Name           string         `json:"name"`
	EntranceX      float64        `json:"entranceX"`
	EntranceY      float64        `json:"entranceY"`
	Shelves        []ShelfSummary `json:"shelves"`
	Utilization    *float64       `json:"utilization"` // nil when the lab has no capacity yet
	TotalCapacity  int64          `json:"totalCapacity"`
	TotalOccupancy int64          `json:"totalOccupancy"`
}

type LayoutCoordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ShelfCoordinateInput struct {
	ID      uint    `json:"id" validate:"required"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Version uint    `json:"version"`
}

// SaveLayoutInput is the floor-plan batch save payload. The laboratory
// entrance and every shelf coordinate are written in one transaction.
type SaveLayoutInput struct {
	Entrance LayoutCoordinate       `json:"entrance"`
	Shelves  []ShelfCoordinateInput `json:"shelves" validate:"dive"`
}
