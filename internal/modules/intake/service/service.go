package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"evergreenrx.com/pharmanotify/internal/entity"
	"evergreenrx.com/pharmanotify/internal/modules/intake/dto"
	intakeRepo "evergreenrx.com/pharmanotify/internal/modules/intake/repository"
	notifService "evergreenrx.com/pharmanotify/internal/modules/notification/service"
	"github.com/microcosm-cc/bluemonday"
)

// IntakeService turns storefront submissions and commerce webhooks into
// persisted records plus admin notifications. Notification failures are
// logged but never fail the intake itself: the domain record is the source
// of truth, the notification is best-effort.
type IntakeService interface {
	SubmitContact(ctx context.Context, req dto.ContactRequest) (*entity.ContactMessage, error)
	SubmitAppointment(ctx context.Context, req dto.AppointmentRequest) (*entity.Appointment, error)
	SubmitRefill(ctx context.Context, req dto.RefillRequestInput) (*entity.RefillRequest, error)
	SubmitTransfer(ctx context.Context, req dto.TransferRequestInput) (*entity.TransferRequest, error)
	HandleCommerceEvent(ctx context.Context, event dto.CommerceWebhook, raw json.RawMessage) error
	HandleInventoryEvent(ctx context.Context, event dto.InventoryWebhook, raw json.RawMessage) error
}

type intakeService struct {
	repo          intakeRepo.IntakeRepository
	notifications notifService.NotificationService
	sanitizer     *bluemonday.Policy
}

func NewIntakeService(repo intakeRepo.IntakeRepository, notifications notifService.NotificationService) IntakeService {
	return &intakeService{
		repo:          repo,
		notifications: notifications,
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

func (s *intakeService) clean(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func (s *intakeService) SubmitContact(ctx context.Context, req dto.ContactRequest) (*entity.ContactMessage, error) {
	msg := &entity.ContactMessage{
		Name:    s.clean(req.Name),
		Email:   s.clean(req.Email),
		Phone:   s.clean(req.Phone),
		Subject: s.clean(req.Subject),
		Message: s.clean(req.Message),
	}

	if err := s.repo.CreateContact(ctx, msg); err != nil {
		return nil, err
	}

	s.notify(ctx, entity.NotifTypeContact,
		"New contact message",
		fmt.Sprintf("%s sent a message: %s", msg.Name, truncate(msg.Message, 120)),
		msg)

	return msg, nil
}

func (s *intakeService) SubmitAppointment(ctx context.Context, req dto.AppointmentRequest) (*entity.Appointment, error) {
	appt := &entity.Appointment{
		Name:        s.clean(req.Name),
		Email:       s.clean(req.Email),
		Phone:       s.clean(req.Phone),
		Service:     s.clean(req.Service),
		PreferredAt: req.PreferredAt,
		Notes:       s.clean(req.Notes),
	}

	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	s.notify(ctx, entity.NotifTypeAppointment,
		"New appointment request",
		fmt.Sprintf("%s requested %s for %s", appt.Name, appt.Service, appt.PreferredAt.Format("Jan 2 15:04")),
		appt)

	return appt, nil
}

func (s *intakeService) SubmitRefill(ctx context.Context, req dto.RefillRequestInput) (*entity.RefillRequest, error) {
	refill := &entity.RefillRequest{
		PatientName: s.clean(req.PatientName),
		Phone:       s.clean(req.Phone),
		RxNumber:    s.clean(req.RxNumber),
		Medication:  s.clean(req.Medication),
		Notes:       s.clean(req.Notes),
	}

	if err := s.repo.CreateRefill(ctx, refill); err != nil {
		return nil, err
	}

	s.notify(ctx, entity.NotifTypePrescription,
		"New refill request",
		fmt.Sprintf("%s requested a refill for Rx %s", refill.PatientName, refill.RxNumber),
		refill)

	return refill, nil
}

func (s *intakeService) SubmitTransfer(ctx context.Context, req dto.TransferRequestInput) (*entity.TransferRequest, error) {
	transfer := &entity.TransferRequest{
		PatientName:     s.clean(req.PatientName),
		Phone:           s.clean(req.Phone),
		CurrentPharmacy: s.clean(req.CurrentPharmacy),
		PharmacyPhone:   s.clean(req.PharmacyPhone),
		Medications:     s.clean(req.Medications),
	}

	if err := s.repo.CreateTransfer(ctx, transfer); err != nil {
		return nil, err
	}

	s.notify(ctx, entity.NotifTypePrescription,
		"New transfer request",
		fmt.Sprintf("%s wants to transfer from %s", transfer.PatientName, transfer.CurrentPharmacy),
		transfer)

	return transfer, nil
}

func (s *intakeService) HandleCommerceEvent(ctx context.Context, event dto.CommerceWebhook, raw json.RawMessage) error {
	notifType := entity.NotifTypeOrder
	title := fmt.Sprintf("Order %s %s", event.OrderID, event.Event)

	// Payment failures get the payment severity so they page on-call.
	if strings.HasPrefix(event.Event, "payment") || event.Status == "failed" {
		notifType = entity.NotifTypePayment
		title = fmt.Sprintf("Payment event on order %s: %s", event.OrderID, event.Event)
	}

	n := &entity.Notification{
		Type:    notifType,
		Title:   title,
		Message: fmt.Sprintf("Order %s: %s (total %.2f)", event.OrderID, event.Event, event.Total),
		Data:    raw,
	}
	return s.notifications.Create(ctx, n)
}

func (s *intakeService) HandleInventoryEvent(ctx context.Context, event dto.InventoryWebhook, raw json.RawMessage) error {
	n := &entity.Notification{
		Type:    entity.NotifTypeInventory,
		Title:   fmt.Sprintf("Low stock: %s", event.Product),
		Message: fmt.Sprintf("%s (%s) is at %d units (threshold %d)", event.Product, event.SKU, event.Stock, event.Threshold),
		Data:    raw,
	}
	return s.notifications.Create(ctx, n)
}

func (s *intakeService) notify(ctx context.Context, notifType, title, message string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}

	n := &entity.Notification{
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		log.Printf("failed to create %s notification: %v", notifType, err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
