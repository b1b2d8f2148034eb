package model

// Client is a row of the external client directory. Clients are not
// managed here; the storage engine only needs them for assignment and
// for the client-scoped storage view.
type Client struct {
	DTO
	Name   string `gorm:"not null;uniqueIndex" validate:"required" json:"name"`
	Code   string `gorm:"uniqueIndex;size:10" json:"code"`
	Active *bool  `gorm:"not null;default:true" json:"isActive"`
}

type Clients []Client
