package models

import "time"

// Status order. Status "settled" (default: paid & cancelled) tidak
// menghalangi penutupan meja; sisanya dianggap masih berjalan.
const (
	OrderOpen           = "open"
	OrderInProgress     = "in_progress"
	OrderReady          = "ready"
	OrderPendingPayment = "pending_payment"
	OrderPaid           = "paid"
	OrderCancelled      = "cancelled"
)

type Order struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	TableID        uint         `gorm:"not null;index" json:"table_id"`
	Table          Table        `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableSessionID uint         `gorm:"not null;index" json:"table_session_id"`
	TableSession   TableSession `gorm:"foreignKey:TableSessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Status         string       `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	TotalAmount    float64      `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	OrderItems     []OrderItem  `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}
