package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/chanikul/edenclinic/internal/adapter/blobstore"
	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

const downloadURLTTL = 15 * time.Minute

// ResultUseCase manages lab results: upload, release and download.
type ResultUseCase struct {
	results repository.TestResultRepository
	orders  repository.OrderRepository
	tests   repository.BloodTestRepository
	clients repository.ClientRepository
	store   blobstore.Store
	mail    mailer.Mailer
	auditor auditor
	logger  *slog.Logger
}

// NewResultUseCase constructs ResultUseCase.
func NewResultUseCase(results repository.TestResultRepository, orders repository.OrderRepository, tests repository.BloodTestRepository, clients repository.ClientRepository, audit repository.AuditLogRepository, store blobstore.Store, mail mailer.Mailer, logger *slog.Logger) *ResultUseCase {
	return &ResultUseCase{
		results: results,
		orders:  orders,
		tests:   tests,
		clients: clients,
		store:   store,
		mail:    mail,
		auditor: auditor{audit: audit, logger: logger},
		logger:  logger,
	}
}

// Create registers a processing result against an order.
func (u *ResultUseCase) Create(ctx context.Context, actor *model.Admin, orderID, bloodTestID int64, clientID *int64) (*model.TestResult, error) {
	if _, err := u.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	if _, err := u.tests.GetByID(ctx, bloodTestID); err != nil {
		return nil, err
	}

	result, err := u.results.Create(ctx, orderID, bloodTestID, clientID)
	if err != nil {
		return nil, err
	}
	u.auditor.record(ctx, actor.ID, "result.created", "test_result", itoa(result.ID), map[string]any{
		"order_id": orderID,
	})
	return result, nil
}

// Get returns one result.
func (u *ResultUseCase) Get(ctx context.Context, id int64) (*model.TestResult, error) {
	return u.results.GetByID(ctx, id)
}

// ListByClient returns a patient's results.
func (u *ResultUseCase) ListByClient(ctx context.Context, clientID int64) ([]model.TestResult, error) {
	return u.results.ListByClient(ctx, clientID)
}

// UploadFile stores a result document and attaches its key to the result.
func (u *ResultUseCase) UploadFile(ctx context.Context, actor *model.Admin, id int64, filename, contentType string, r io.Reader, size int64) (*model.TestResult, error) {
	result, err := u.results.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	test, err := u.tests.GetByID(ctx, result.BloodTestID)
	if err != nil {
		return nil, err
	}

	var clientID int64
	if result.ClientID != nil {
		clientID = *result.ClientID
	}
	key := blobstore.ObjectKey(test.Slug, clientID, filename)
	if err := u.store.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, err
	}
	if err := u.results.AttachFile(ctx, id, key); err != nil {
		return nil, err
	}

	u.auditor.record(ctx, actor.ID, "result.file_uploaded", "test_result", itoa(id), map[string]any{
		"key": key,
	})
	return u.results.GetByID(ctx, id)
}

// MarkReady releases a result to the patient. The email fires only on the
// call that actually performs the transition, so re-submitting the form
// cannot notify twice.
func (u *ResultUseCase) MarkReady(ctx context.Context, actor *model.Admin, id int64) (*model.TestResult, error) {
	transitioned, err := u.results.MarkReady(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := u.results.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return result, nil
	}

	u.auditor.record(ctx, actor.ID, "result.released", "test_result", itoa(id), nil)

	if result.ClientID != nil {
		client, err := u.clients.GetByID(ctx, *result.ClientID)
		if err != nil {
			u.logger.Error("load client for result email", slog.Any("error", err))
			return result, nil
		}
		test, err := u.tests.GetByID(ctx, result.BloodTestID)
		testName := ""
		if err == nil {
			testName = test.Name
		}
		if err := u.mail.SendResultReady(ctx, client.Email, client.Name, testName); err != nil {
			u.logger.Error("result ready email failed", slog.Any("error", err))
		}
	}
	return result, nil
}

// Delete removes a result and best-effort removes its stored file.
func (u *ResultUseCase) Delete(ctx context.Context, actor *model.Admin, id int64) error {
	result, err := u.results.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result.ResultKey != nil {
		if err := u.store.Remove(ctx, *result.ResultKey); err != nil {
			u.logger.Error("remove result object", slog.Any("error", err))
		}
	}
	if err := u.results.Delete(ctx, id); err != nil {
		return err
	}
	u.auditor.record(ctx, actor.ID, "result.deleted", "test_result", itoa(id), nil)
	return nil
}

// DownloadURL returns a short-lived URL for a ready result. Patients may
// only download their own results; admins may download any.
func (u *ResultUseCase) DownloadURL(ctx context.Context, id int64, requesterClientID *int64) (string, error) {
	result, err := u.results.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if requesterClientID != nil {
		if result.ClientID == nil || *result.ClientID != *requesterClientID {
			return "", domainErrors.ErrForbidden
		}
	}
	if result.Status != model.ResultStatusReady || result.ResultKey == nil {
		return "", domainErrors.ErrResultNotReady
	}
	return u.store.PresignedURL(ctx, *result.ResultKey, downloadURLTTL)
}
