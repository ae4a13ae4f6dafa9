package service

import (
	"context"
	"encoding/json"
	"testing"

	"evergreenrx.com/pharmanotify/internal/entity"
	"evergreenrx.com/pharmanotify/internal/modules/intake/dto"
)

type fakeIntakeRepo struct {
	contacts     []*entity.ContactMessage
	appointments []*entity.Appointment
	refills      []*entity.RefillRequest
	transfers    []*entity.TransferRequest
}

func (f *fakeIntakeRepo) CreateContact(_ context.Context, msg *entity.ContactMessage) error {
	msg.ID = uint(len(f.contacts) + 1)
	f.contacts = append(f.contacts, msg)
	return nil
}

func (f *fakeIntakeRepo) CreateAppointment(_ context.Context, appt *entity.Appointment) error {
	appt.ID = uint(len(f.appointments) + 1)
	f.appointments = append(f.appointments, appt)
	return nil
}

func (f *fakeIntakeRepo) CreateRefill(_ context.Context, req *entity.RefillRequest) error {
	req.ID = uint(len(f.refills) + 1)
	f.refills = append(f.refills, req)
	return nil
}

func (f *fakeIntakeRepo) CreateTransfer(_ context.Context, req *entity.TransferRequest) error {
	req.ID = uint(len(f.transfers) + 1)
	f.transfers = append(f.transfers, req)
	return nil
}

type fakeNotifications struct {
	created []*entity.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n *entity.Notification) error {
	n.ID = uint(len(f.created) + 1)
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotifications) List(context.Context, int, int) ([]entity.Notification, error) {
	return nil, nil
}
func (f *fakeNotifications) MarkAsRead(context.Context, uint) error { return nil }
func (f *fakeNotifications) MarkAllAsRead(context.Context) error    { return nil }
func (f *fakeNotifications) Delete(context.Context, uint) error     { return nil }
func (f *fakeNotifications) UnreadCount(context.Context) (int64, error) {
	return 0, nil
}

func TestSubmitContactSanitizesAndNotifies(t *testing.T) {
	repo := &fakeIntakeRepo{}
	notifs := &fakeNotifications{}
	svc := NewIntakeService(repo, notifs)

	msg, err := svc.SubmitContact(context.Background(), dto.ContactRequest{
		Name:    "Dana",
		Email:   "dana@example.com",
		Message: `Hi <script>alert("xss")</script> there`,
	})
	if err != nil {
		t.Fatal(err)
	}

	if msg.Message != "Hi  there" {
		t.Fatalf("message not sanitized: %q", msg.Message)
	}
	if len(notifs.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifs.created))
	}
	n := notifs.created[0]
	if n.Type != entity.NotifTypeContact {
		t.Fatalf("notification type = %q, want contact", n.Type)
	}
	if n.Read {
		t.Fatal("new notification must start unread")
	}
}

func TestSubmitRefillNotifiesPrescription(t *testing.T) {
	repo := &fakeIntakeRepo{}
	notifs := &fakeNotifications{}
	svc := NewIntakeService(repo, notifs)

	_, err := svc.SubmitRefill(context.Background(), dto.RefillRequestInput{
		PatientName: "Pat",
		Phone:       "555-0100",
		RxNumber:    "RX-1234",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(repo.refills) != 1 {
		t.Fatal("refill not persisted")
	}
	if notifs.created[0].Type != entity.NotifTypePrescription {
		t.Fatalf("notification type = %q, want prescription", notifs.created[0].Type)
	}
}

func TestCommerceEventSeveritySplit(t *testing.T) {
	repo := &fakeIntakeRepo{}
	notifs := &fakeNotifications{}
	svc := NewIntakeService(repo, notifs)

	raw := json.RawMessage(`{"event":"order.created","order_id":"42"}`)
	err := svc.HandleCommerceEvent(context.Background(), dto.CommerceWebhook{
		Event: "order.created", OrderID: "42", Total: 19.99,
	}, raw)
	if err != nil {
		t.Fatal(err)
	}

	err = svc.HandleCommerceEvent(context.Background(), dto.CommerceWebhook{
		Event: "payment.failed", OrderID: "42",
	}, raw)
	if err != nil {
		t.Fatal(err)
	}

	if notifs.created[0].Type != entity.NotifTypeOrder {
		t.Fatalf("first event type = %q, want order", notifs.created[0].Type)
	}
	if notifs.created[1].Type != entity.NotifTypePayment {
		t.Fatalf("second event type = %q, want payment", notifs.created[1].Type)
	}
	if string(notifs.created[0].Data) != string(raw) {
		t.Fatal("raw payload was not carried through unmodified")
	}
}

func TestInventoryEvent(t *testing.T) {
	repo := &fakeIntakeRepo{}
	notifs := &fakeNotifications{}
	svc := NewIntakeService(repo, notifs)

	err := svc.HandleInventoryEvent(context.Background(), dto.InventoryWebhook{
		SKU: "AMOX-500", Product: "Amoxicillin 500mg", Stock: 3, Threshold: 10,
	}, json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	if notifs.created[0].Type != entity.NotifTypeInventory {
		t.Fatalf("type = %q, want inventory", notifs.created[0].Type)
	}
}
