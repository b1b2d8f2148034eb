package model

type Account struct {
	DTO
	Username     string      `gorm:"uniqueIndex;not null" validate:"required,min=3,max=50" json:"username"`
	Password     string      `gorm:"not null" validate:"required,min=6,max=50" json:"-"`
	Active       bool        `gorm:"not null;default:true" json:"active"`
	Role         string      `json:"role"` // ADMIN QUALITY_ADMIN QUALITY_MANAGER STAFF CLIENT
	LabId        *uint       `json:"labId"`
	ClientId     *uint       `json:"clientId"`
	Laboratory   *Laboratory `gorm:"foreignKey:LabId;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"laboratory,omitempty"`
	Client       *Client     `gorm:"foreignKey:ClientId;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"client,omitempty"`
	AccessToken  string      `gorm:"-" json:"accessToken,omitempty"`
	RefreshToken string      `gorm:"-" json:"refreshToken,omitempty"`
}

type Accounts []Account
