package model

type Shelf struct {
	DTO
	LabId      uint       `gorm:"not null;index;uniqueIndex:idx_lab_letter" json:"labId"`
	Laboratory Laboratory `gorm:"foreignKey:LabId;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Number     uint       `gorm:"not null" json:"number"` // lab-scoped, assigned sequentially
	Letter     string     `gorm:"not null;size:1;uniqueIndex:idx_lab_letter" validate:"required,len=1,uppercase" json:"letter"`
	Rows       int        `gorm:"not null" validate:"required,min=1" json:"rows"`
	Columns    int        `gorm:"not null" validate:"required,min=1" json:"columns"`
	Capacity   int        `gorm:"not null" validate:"required,min=1" json:"capacity"` // default capacity per position
	X          float64    `gorm:"not null;default:0" json:"x"`
	Y          float64    `gorm:"not null;default:0" json:"y"`
	ClientId   *uint      `json:"clientId"` // nil = open to all clients
	Client     *Client    `gorm:"foreignKey:ClientId;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"client,omitempty"`
	AllowView  bool       `gorm:"not null;default:false" json:"allowView"`
	Version    uint       `gorm:"not null;default:1" json:"version"`
	Positions  []Position `gorm:"foreignKey:ShelfId" json:"positions,omitempty"`
}

type Shelves []Shelf

// TotalCapacity is derived, never stored.
func (s *Shelf) TotalCapacity() int {
	return s.Rows * s.Columns * s.Capacity
}

type CreateShelfInput struct {
	LabId     uint    `json:"labId" validate:"required"`
	Letter    string  `json:"letter" validate:"required,len=1"`
	Rows      int     `json:"rows" validate:"required,min=1"`
	Columns   int     `json:"columns" validate:"required,min=1"`
	Capacity  int     `json:"capacity" validate:"required,min=1"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClientId  *uint   `json:"clientId"`
	AllowView *bool   `json:"allowView"`
}

type EditShelfInput struct {
	Letter      *string  `json:"letter" validate:"omitempty,len=1"`
	Rows        *int     `json:"rows" validate:"omitempty,min=1"`
	Columns     *int     `json:"columns" validate:"omitempty,min=1"`
	Capacity    *int     `json:"capacity" validate:"omitempty,min=1"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	ClientId    *uint    `json:"clientId"`
	ClearClient bool     `json:"clearClient"`
	AllowView   *bool    `json:"allowView"`
	Version     uint     `json:"version" validate:"required"`
}

// ShelfSummary is the card/layout read model for a shelf.
type ShelfSummary struct {
	ID            uint     `json:"id"`
	Number        uint     `json:"number"`
	Letter        string   `json:"letter"`
	Rows          int      `json:"rows"`
	Columns       int      `json:"columns"`
	Capacity      int      `json:"capacity"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	ClientId      *uint    `json:"clientId"`
	AllowView     bool     `json:"allowView"`
	Version       uint     `json:"version"`
	TotalCapacity int64    `json:"totalCapacity"`
	Occupancy     int64    `json:"occupancy"`
	Utilization   *float64 `json:"utilization"`
	Band          string   `json:"band"`
}
