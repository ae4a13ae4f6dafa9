package entity

import "time"

// ContactMessage is a storefront contact-form submission.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;not null" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone,omitempty"`
	Subject   string    `gorm:"size:255" json:"subject,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Appointment is a consultation booking request (vaccination, medication
// review). Scheduling itself happens off-platform; we only record the ask.
type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Email       string    `gorm:"size:100;not null" json:"email"`
	Phone       string    `gorm:"size:30;not null" json:"phone"`
	Service     string    `gorm:"size:100;not null" json:"service"`
	PreferredAt time.Time `json:"preferred_at"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RefillRequest asks the pharmacy to refill an existing prescription.
type RefillRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PatientName string    `gorm:"size:100;not null" json:"patient_name"`
	Phone       string    `gorm:"size:30;not null" json:"phone"`
	RxNumber    string    `gorm:"size:50;not null" json:"rx_number"`
	Medication  string    `gorm:"size:255" json:"medication,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TransferRequest asks to move a prescription from another pharmacy.
type TransferRequest struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PatientName     string    `gorm:"size:100;not null" json:"patient_name"`
	Phone           string    `gorm:"size:30;not null" json:"phone"`
	CurrentPharmacy string    `gorm:"size:255;not null" json:"current_pharmacy"`
	PharmacyPhone   string    `gorm:"size:30" json:"pharmacy_phone,omitempty"`
	Medications     string    `gorm:"type:text;not null" json:"medications"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
