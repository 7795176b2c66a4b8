package models

import "time"

// Status meja selalu turunan dari "apakah ada TableSession aktif";
// hanya lifecycle.Manager yang boleh mengubahnya.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"table_number"`
	Name        string    `gorm:"type:varchar(100)" json:"name"`
	Capacity    int       `gorm:"not null;default:2" json:"capacity"`
	PosX        int       `json:"pos_x"`
	PosY        int       `json:"pos_y"`
	Area        string    `gorm:"type:varchar(50)" json:"area"`
	Status      string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
