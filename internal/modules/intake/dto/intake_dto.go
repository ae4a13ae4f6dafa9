package dto

import "time"

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=30"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}

type AppointmentRequest struct {
	Name        string    `json:"name" binding:"required,max=100"`
	Email       string    `json:"email" binding:"required,email"`
	Phone       string    `json:"phone" binding:"required,max=30"`
	Service     string    `json:"service" binding:"required,max=100"`
	PreferredAt time.Time `json:"preferred_at" binding:"required"`
	Notes       string    `json:"notes" binding:"max=2000"`
}

type RefillRequestInput struct {
	PatientName string `json:"patient_name" binding:"required,max=100"`
	Phone       string `json:"phone" binding:"required,max=30"`
	RxNumber    string `json:"rx_number" binding:"required,max=50"`
	Medication  string `json:"medication" binding:"max=255"`
	Notes       string `json:"notes" binding:"max=2000"`
}

type TransferRequestInput struct {
	PatientName     string `json:"patient_name" binding:"required,max=100"`
	Phone           string `json:"phone" binding:"required,max=30"`
	CurrentPharmacy string `json:"current_pharmacy" binding:"required,max=255"`
	PharmacyPhone   string `json:"pharmacy_phone" binding:"max=30"`
	Medications     string `json:"medications" binding:"required,max=5000"`
}

// CommerceWebhook is the subset of an order event we act on; the full payload
// rides along opaquely and lands in Notification.Data untouched.
type CommerceWebhook struct {
	Event   string  `json:"event" binding:"required"`
	OrderID string  `json:"order_id" binding:"required"`
	Status  string  `json:"status"`
	Total   float64 `json:"total"`
}

type InventoryWebhook struct {
	SKU       string `json:"sku" binding:"required"`
	Product   string `json:"product" binding:"required"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}
