package model

// StorageHistory is the append-only audit log. Rows are only ever
// inserted, never updated or deleted.
type StorageHistory struct {
	DTO
	Ref        string `gorm:"not null;size:36;index" json:"ref"` // uuid
	PositionId uint   `gorm:"not null;index" json:"positionId"`
	Code       string `gorm:"size:8" json:"code"`
	Action     string `gorm:"not null;size:20" json:"action"`
	Actor      string `gorm:"not null" json:"actor"`
	Delta      int    `json:"delta"`
	Note       string `gorm:"size:255" json:"note"`
}

type StorageHistories []StorageHistory
