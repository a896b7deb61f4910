package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

var orderColumnNames = []string{
	"id", "client_id", "patient_name", "patient_email", "patient_dob", "patient_mobile",
	"blood_test_id", "test_name", "status", "stripe_session_id", "payment_intent_id",
	"shipping_address", "notes", "created_at", "updated_at",
}

func orderRow(now time.Time, status model.OrderStatus, addrJSON []byte) *pgxmockv3.Rows {
	testID := int64(3)
	return pgxmockv3.NewRows(orderColumnNames).AddRow(
		int64(1), nil, "Pat Doe", "pat@example.com", now.AddDate(-30, 0, 0), "07000000000",
		&testID, "Thyroid Panel", status, "cs_test_1", "", addrJSON, "", now, now)
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()
	dob := now.AddDate(-30, 0, 0)

	newOrder := repository.NewOrder{
		PatientName:   "Pat Doe",
		PatientEmail:  "pat@example.com",
		PatientDOB:    dob,
		PatientMobile: "07000000000",
		BloodTestID:   3,
		TestName:      "Thyroid Panel",
	}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs((*int64)(nil), "Pat Doe", "pat@example.com", dob, "07000000000",
			int64(3), "Thyroid Panel", model.OrderStatusPending, "").
		WillReturnRows(orderRow(now, model.OrderStatusPending, nil))
	order, err := repo.Create(context.Background(), newOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 1 || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.ShippingAddress != nil {
		t.Fatalf("expected no shipping address, got %+v", order.ShippingAddress)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetDecodesAddress(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	addrJSON := []byte(`{"line1":"1 High St","city":"London","postcode":"N1 1AA","country":"GB"}`)
	mock.ExpectQuery("FROM orders WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(orderRow(now, model.OrderStatusPaid, addrJSON))
	order, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ShippingAddress == nil || order.ShippingAddress.Postcode != "N1 1AA" {
		t.Fatalf("unexpected address: %+v", order.ShippingAddress)
	}

	mock.ExpectQuery("FROM orders WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(orderRow(now, model.OrderStatusPaid, []byte("{bad")))
	if _, err := repo.GetByID(context.Background(), 1); err == nil {
		t.Fatal("expected decode error")
	}

	mock.ExpectQuery("FROM orders WHERE stripe_session_id").
		WithArgs("cs_missing").
		WillReturnRows(pgxmockv3.NewRows(orderColumnNames))
	if _, err := repo.GetBySessionID(context.Background(), "cs_missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	status := model.OrderStatusPending
	mock.ExpectQuery("FROM orders").
		WithArgs(&status, 50).
		WillReturnRows(orderRow(now, model.OrderStatusPending, nil))
	orders, err := repo.List(context.Background(), &status, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].TestName != "Thyroid Panel" {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	mock.ExpectQuery("FROM orders WHERE client_id").
		WithArgs(int64(5)).
		WillReturnRows(orderRow(now, model.OrderStatusPaid, nil))
	if _, err := repo.ListByClient(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryAttachSession(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	mock.ExpectExec("UPDATE orders SET stripe_session_id").
		WithArgs(int64(1), "cs_test_1").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.AttachSession(context.Background(), 1, "cs_test_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET stripe_session_id").
		WithArgs(int64(404), "cs_test_1").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.AttachSession(context.Background(), 404, "cs_test_1"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	t.Run("allowed transition", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusPaid))
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs(int64(1), model.OrderStatusDispatched).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectCommit()
		if err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusDispatched); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("refused transition", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusReady))
		mock.ExpectRollback()
		if err := repo.UpdateStatus(context.Background(), 1, model.OrderStatusPaid); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM orders WHERE id").
			WithArgs(int64(404)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}))
		mock.ExpectRollback()
		if err := repo.UpdateStatus(context.Background(), 404, model.OrderStatusPaid); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryMarkPaid(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	addr := &model.ShippingAddress{Line1: "1 High St", City: "London", Postcode: "N1 1AA", Country: "GB"}
	addrJSON, _ := json.Marshal(addr)

	t.Run("first delivery transitions", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(int64(1), model.OrderStatusPaid, addrJSON, "pi_1", model.OrderStatusPending).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		transitioned, err := repo.MarkPaid(context.Background(), 1, addr, "pi_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !transitioned {
			t.Fatal("expected transition")
		}
	})

	t.Run("redelivery is a no-op", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(int64(1), model.OrderStatusPaid, addrJSON, "pi_1", model.OrderStatusPending).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM orders WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusPaid))
		transitioned, err := repo.MarkPaid(context.Background(), 1, addr, "pi_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if transitioned {
			t.Fatal("expected no transition on redelivery")
		}
	})

	t.Run("cancelled order refuses payment", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(int64(1), model.OrderStatusPaid, addrJSON, "pi_1", model.OrderStatusPending).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM orders WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusCancelled))
		if _, err := repo.MarkPaid(context.Background(), 1, addr, "pi_1"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition, got %v", err)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(int64(404), model.OrderStatusPaid, addrJSON, "pi_1", model.OrderStatusPending).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT status FROM orders WHERE id").
			WithArgs(int64(404)).
			WillReturnRows(pgxmockv3.NewRows([]string{"status"}))
		if _, err := repo.MarkPaid(context.Background(), 404, addr, "pi_1"); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositorySelectStalePending(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("FROM orders").
		WithArgs(model.OrderStatusPending, "1800 seconds", 100).
		WillReturnRows(orderRow(now, model.OrderStatusPending, nil))
	orders, err := repo.SelectStalePending(context.Background(), 30*time.Minute, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
