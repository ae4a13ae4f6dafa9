package entity

import (
	"encoding/json"
	"time"
)

// Notification categories. The type drives severity on the client side
// (toast variant, alert mail) and nothing else on the server.
const (
	NotifTypeOrder        = "order"
	NotifTypeContact      = "contact"
	NotifTypeAppointment  = "appointment"
	NotifTypePrescription = "prescription"
	NotifTypePayment      = "payment"
	NotifTypeInventory    = "inventory"
)

type Notification struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Type      string          `gorm:"size:50;not null;index" json:"type"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Message   string          `gorm:"type:text" json:"message"`
	Read      bool            `gorm:"default:false" json:"read"`
	Data      json.RawMessage `gorm:"type:jsonb" json:"data,omitempty"` // opaque source payload, carried through unmodified
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}
