package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	testhelpers "github.com/chanikul/edenclinic/internal/test"
)

type resultFixture struct {
	results *testhelpers.TestResultRepositoryStub
	orders  *testhelpers.OrderRepositoryStub
	tests   *testhelpers.BloodTestRepositoryStub
	clients *testhelpers.ClientRepositoryStub
	store   *testhelpers.StoreStub
	mail    *testhelpers.MailerRecorder
	audit   *testhelpers.AuditLogRepositoryStub
	uc      *ResultUseCase
}

func newResultFixture() *resultFixture {
	f := &resultFixture{
		results: testhelpers.NewTestResultRepositoryStub(),
		orders:  testhelpers.NewOrderRepositoryStub(),
		tests:   testhelpers.NewBloodTestRepositoryStub(),
		clients: testhelpers.NewClientRepositoryStub(),
		store:   testhelpers.NewStoreStub(),
		mail:    &testhelpers.MailerRecorder{},
		audit:   &testhelpers.AuditLogRepositoryStub{},
	}
	f.uc = NewResultUseCase(f.results, f.orders, f.tests, f.clients, f.audit, f.store, f.mail, testLogger())
	return f
}

func TestResultCreate(t *testing.T) {
	f := newResultFixture()
	order := f.orders.Add(model.Order{Status: model.OrderStatusPaid})
	test := f.tests.Add(activeTest("thyroid-profile"))
	clientID := int64(4)

	result, err := f.uc.Create(context.Background(), testActor(), order.ID, test.ID, &clientID)
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if result.Status != model.ResultStatusProcessing {
		t.Fatalf("expected processing, got %s", result.Status)
	}
	if len(f.audit.Entries) != 1 || f.audit.Entries[0].Action != "result.created" {
		t.Fatalf("expected audit entry, got %+v", f.audit.Entries)
	}

	if _, err := f.uc.Create(context.Background(), testActor(), 999, test.ID, nil); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("unknown order must be rejected, got %v", err)
	}
}

func TestResultUploadFile(t *testing.T) {
	f := newResultFixture()
	order := f.orders.Add(model.Order{Status: model.OrderStatusPaid})
	test := f.tests.Add(activeTest("thyroid-profile"))
	clientID := int64(4)
	result := f.results.Add(model.TestResult{OrderID: order.ID, BloodTestID: test.ID, ClientID: &clientID, Status: model.ResultStatusProcessing})

	updated, err := f.uc.UploadFile(context.Background(), testActor(), result.ID, "report.pdf", "application/pdf", strings.NewReader("pdf-bytes"), 9)
	if err != nil {
		t.Fatalf("upload returned error: %v", err)
	}
	if updated.ResultKey == nil {
		t.Fatalf("expected key attached")
	}
	if !strings.HasPrefix(*updated.ResultKey, "thyroid-profile/4/") || !strings.HasSuffix(*updated.ResultKey, ".pdf") {
		t.Fatalf("unexpected object key %q", *updated.ResultKey)
	}
	if _, stored := f.store.Objects[*updated.ResultKey]; !stored {
		t.Fatalf("object not stored under %q", *updated.ResultKey)
	}
}

func TestResultMarkReadyEmailsOnce(t *testing.T) {
	f := newResultFixture()
	client := f.clients.Add(model.Client{Email: "alice@example.com", Name: "Alice", Active: true})
	test := f.tests.Add(activeTest("thyroid-profile"))
	key := "thyroid-profile/1/abc.pdf"
	result := f.results.Add(model.TestResult{OrderID: 1, BloodTestID: test.ID, ClientID: &client.ID, Status: model.ResultStatusProcessing, ResultKey: &key})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		released, err := f.uc.MarkReady(ctx, testActor(), result.ID)
		if err != nil {
			t.Fatalf("mark ready %d returned error: %v", i, err)
		}
		if released.Status != model.ResultStatusReady {
			t.Fatalf("expected ready, got %s", released.Status)
		}
	}
	if f.mail.Count("result_ready") != 1 {
		t.Fatalf("release must email exactly once, got %d", f.mail.Count("result_ready"))
	}
}

func TestResultMarkReadyWithoutFile(t *testing.T) {
	f := newResultFixture()
	result := f.results.Add(model.TestResult{OrderID: 1, BloodTestID: 1, Status: model.ResultStatusProcessing})

	if _, err := f.uc.MarkReady(context.Background(), testActor(), result.ID); !errors.Is(err, domainErrors.ErrResultNotReady) {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
	if f.mail.Count("result_ready") != 0 {
		t.Fatalf("no email without a file")
	}
}

func TestResultDownloadURL(t *testing.T) {
	f := newResultFixture()
	owner := int64(4)
	key := "thyroid-profile/4/abc.pdf"
	ready := f.results.Add(model.TestResult{OrderID: 1, BloodTestID: 1, ClientID: &owner, Status: model.ResultStatusReady, ResultKey: &key})
	processing := f.results.Add(model.TestResult{OrderID: 2, BloodTestID: 1, ClientID: &owner, Status: model.ResultStatusProcessing})

	ctx := context.Background()

	url, err := f.uc.DownloadURL(ctx, ready.ID, &owner)
	if err != nil {
		t.Fatalf("download url returned error: %v", err)
	}
	if !strings.Contains(url, key) {
		t.Fatalf("url does not reference object: %q", url)
	}

	// Admin path carries no requester restriction.
	if _, err := f.uc.DownloadURL(ctx, ready.ID, nil); err != nil {
		t.Fatalf("admin download returned error: %v", err)
	}

	other := int64(9)
	if _, err := f.uc.DownloadURL(ctx, ready.ID, &other); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("foreign patient must be forbidden, got %v", err)
	}
	if _, err := f.uc.DownloadURL(ctx, processing.ID, &owner); !errors.Is(err, domainErrors.ErrResultNotReady) {
		t.Fatalf("processing result must not be downloadable, got %v", err)
	}
}

func TestResultDelete(t *testing.T) {
	f := newResultFixture()
	key := "thyroid-profile/4/abc.pdf"
	f.store.Objects[key] = []byte("pdf")
	result := f.results.Add(model.TestResult{OrderID: 1, BloodTestID: 1, Status: model.ResultStatusReady, ResultKey: &key})

	if err := f.uc.Delete(context.Background(), testActor(), result.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if len(f.store.Removed) != 1 || f.store.Removed[0] != key {
		t.Fatalf("stored object not removed: %v", f.store.Removed)
	}
	if _, err := f.results.GetByID(context.Background(), result.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("result row should be gone, got %v", err)
	}
}
