package models

import "time"

// TableSession -> satu kunjungan dine-in pada sebuah meja.
//
// ActiveTableID menyalin TableID selama sesi berjalan dan di-NULL-kan saat
// sesi ditutup. uniqueIndex pada kolom inilah yang menjamin maksimal satu
// sesi aktif per meja di level database (nilai NULL tidak pernah bentrok,
// jadi trik ini jalan di MySQL maupun SQLite). Pre-check di guard hanya
// untuk pesan error yang ramah; index ini yang jadi penentu saat race.
type TableSession struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableID       uint       `gorm:"not null;index" json:"table_id"`
	Table         Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ActiveTableID *uint      `gorm:"uniqueIndex" json:"-"`
	SessionToken  string     `gorm:"type:varchar(64);not null;index" json:"session_token"`
	CustomerCount int        `gorm:"not null;default:1" json:"customer_count"`
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

// IsActive -> sesi masih berjalan selama EndedAt belum terisi
func (s *TableSession) IsActive() bool {
	return s.EndedAt == nil
}
