package repository

import (
	"context"

	"evergreenrx.com/pharmanotify/internal/entity"
	"gorm.io/gorm"
)

type IntakeRepository interface {
	CreateContact(ctx context.Context, msg *entity.ContactMessage) error
	CreateAppointment(ctx context.Context, appt *entity.Appointment) error
	CreateRefill(ctx context.Context, req *entity.RefillRequest) error
	CreateTransfer(ctx context.Context, req *entity.TransferRequest) error
}

type intakeRepository struct {
	db *gorm.DB
}

func NewIntakeRepository(db *gorm.DB) IntakeRepository {
	return &intakeRepository{db: db}
}

func (r *intakeRepository) CreateContact(ctx context.Context, msg *entity.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *intakeRepository) CreateAppointment(ctx context.Context, appt *entity.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *intakeRepository) CreateRefill(ctx context.Context, req *entity.RefillRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *intakeRepository) CreateTransfer(ctx context.Context, req *entity.TransferRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}
