package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"evergreenrx.com/pharmanotify/internal/entity"
	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	return db, mock
}

func TestNotificationRepository(t *testing.T) {
	t.Run("create inserts a row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "notifications"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectCommit()

		n := &entity.Notification{
			Type:    entity.NotifTypeContact,
			Title:   "New contact message",
			Message: "hello",
		}
		if err := repo.Create(context.Background(), n); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if n.ID != 7 {
			t.Fatalf("expected assigned id 7, got %d", n.ID)
		}
	})

	t.Run("list orders newest first", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "type", "title", "message", "read", "created_at"}).
			AddRow(2, "order", "Order 42 created", "", false, now).
			AddRow(1, "contact", "New contact message", "", true, now.Add(-time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "notifications" ORDER BY created_at desc`).
			WillReturnRows(rows)

		list, err := repo.List(context.Background(), 50, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != 2 {
			t.Fatalf("unexpected list: %+v", list)
		}
	})

	t.Run("mark as read updates one row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "notifications" SET "read"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := repo.MarkAsRead(context.Background(), 1); err != nil {
			t.Fatalf("mark as read failed: %v", err)
		}
	})

	t.Run("mark as read on missing id reports not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "notifications" SET "read"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.MarkAsRead(context.Background(), 999)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("delete removes the row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "notifications"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := repo.Delete(context.Background(), 1); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	})

	t.Run("delete on missing id reports not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "notifications"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Delete(context.Background(), 999)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("count unread", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountUnread(context.Background())
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 3 {
			t.Fatalf("count = %d, want 3", count)
		}
	})
}
