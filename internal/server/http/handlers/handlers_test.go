package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/server/http/middleware"
	testhelpers "github.com/chanikul/edenclinic/internal/test"
	"github.com/chanikul/edenclinic/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixture wires real usecases over in-memory stubs so handler tests
// exercise the full request path below the router.
type fixture struct {
	admins  *testhelpers.AdminRepositoryStub
	clients *testhelpers.ClientRepositoryStub
	orders  *testhelpers.OrderRepositoryStub
	tests   *testhelpers.BloodTestRepositoryStub
	results *testhelpers.TestResultRepositoryStub
	addrs   *testhelpers.AddressRepositoryStub
	audit   *testhelpers.AuditLogRepositoryStub
	events  *testhelpers.WebhookEventRepositoryStub
	gateway *testhelpers.GatewayStub
	mail    *testhelpers.MailerRecorder
	store   *testhelpers.StoreStub

	auth     *usecase.AuthUseCase
	checkout *usecase.CheckoutUseCase
	webhooks *usecase.WebhookUseCase
	catalog  *usecase.CatalogUseCase
	adminUC  *usecase.AdminUseCase
	clientUC *usecase.ClientUseCase
	orderUC  *usecase.OrderUseCase
	resultUC *usecase.ResultUseCase
	addrUC   *usecase.AddressUseCase
}

func newFixture() *fixture {
	f := &fixture{
		admins:  testhelpers.NewAdminRepositoryStub(),
		clients: testhelpers.NewClientRepositoryStub(),
		orders:  testhelpers.NewOrderRepositoryStub(),
		tests:   testhelpers.NewBloodTestRepositoryStub(),
		results: testhelpers.NewTestResultRepositoryStub(),
		addrs:   testhelpers.NewAddressRepositoryStub(),
		audit:   testhelpers.NewAuditLogRepositoryStub(),
		events:  testhelpers.NewWebhookEventRepositoryStub(),
		gateway: &testhelpers.GatewayStub{},
		mail:    &testhelpers.MailerRecorder{},
		store:   testhelpers.NewStoreStub(),
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{BaseURL: "https://clinic.test", SupportEmail: "support@clinic.test"}
	hasher := testhelpers.HasherStub{}
	tokens := testhelpers.StrategyStub{}
	verifier := testhelpers.VerifierStub{}

	f.auth = usecase.NewAuthUseCase(f.admins, f.clients, hasher, tokens, verifier, f.mail, cfg, logger)
	f.checkout = usecase.NewCheckoutUseCase(f.orders, f.tests, f.gateway, cfg, logger)
	f.webhooks = usecase.NewWebhookUseCase(f.orders, f.events, f.gateway, f.mail, cfg, logger)
	f.catalog = usecase.NewCatalogUseCase(f.tests, f.gateway, cfg, logger)
	f.adminUC = usecase.NewAdminUseCase(f.admins, f.audit, hasher, f.mail, cfg, logger)
	f.clientUC = usecase.NewClientUseCase(f.clients, f.audit, f.gateway, hasher, f.mail, cfg, logger)
	f.orderUC = usecase.NewOrderUseCase(f.orders, f.audit, logger)
	f.resultUC = usecase.NewResultUseCase(f.results, f.orders, f.tests, f.clients, f.audit, f.store, f.mail, logger)
	f.addrUC = usecase.NewAddressUseCase(f.addrs)
	return f
}

func (f *fixture) asAdmin(c *gin.Context) {
	c.Set(middleware.AdminContextKey, &model.Admin{ID: 7, Email: "staff@clinic.test", Role: model.RoleSuperAdmin, Active: true})
}

func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	return performRouteRequest(t, method, path, path, handler, setup, body, headers)
}

// performRouteRequest registers handler under a gin route pattern and
// issues a request against a concrete path, so :id params and query
// strings reach the handler.
func performRouteRequest(t *testing.T, method, route, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCurrentAdmin(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if CurrentAdmin(c) != nil {
		t.Fatal("expected nil when not set")
	}

	c.Set(middleware.AdminContextKey, &model.Admin{ID: 42})
	if got := CurrentAdmin(c); got == nil || got.ID != 42 {
		t.Fatalf("unexpected admin %+v", got)
	}
}

func TestAuthHandlerAdminLogin(t *testing.T) {
	f := newFixture()
	f.admins.Add(model.Admin{Email: "staff@clinic.test", PasswordHash: "hash:secret", Role: model.RoleAdmin, Active: true})

	body := []byte(`{"email":"staff@clinic.test","password":"secret"}`)
	resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(f.auth).AdminLogin, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	result := resp.Result()
	t.Cleanup(func() { _ = result.Body.Close() })
	found := false
	for _, cookie := range result.Cookies() {
		if cookie.Name == "eden_admin_token" {
			if cookie.Value == "" || !cookie.HttpOnly {
				t.Fatalf("unexpected session cookie %+v", cookie)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected eden_admin_token cookie")
	}
}

func TestAuthHandlerAdminLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "unknown email", body: []byte(`{"email":"ghost@clinic.test","password":"x"}`), status: http.StatusUnauthorized},
		{name: "wrong password", body: []byte(`{"email":"staff@clinic.test","password":"wrong"}`), status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.admins.Add(model.Admin{Email: "staff@clinic.test", PasswordHash: "hash:secret", Role: model.RoleAdmin, Active: true})
			resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(f.auth).AdminLogin, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerForgotPasswordOpaque(t *testing.T) {
	f := newFixture()
	body := []byte(`{"email":"nobody@clinic.test"}`)
	resp := performRequest(t, http.MethodPost, "/forgot", NewAuthHandler(f.auth).AdminForgotPassword, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for unknown account, got %d", resp.Code)
	}
	if len(f.mail.Sent) != 0 {
		t.Fatalf("expected no mail for unknown account, got %d", len(f.mail.Sent))
	}
}

func TestCheckoutHandlerCheckout(t *testing.T) {
	f := newFixture()
	price := "price_123"
	product := "prod_123"
	f.tests.Add(model.BloodTest{Name: "Thyroid Profile", Slug: "thyroid-profile", PricePence: 4900, StripePriceID: &price, StripeProductID: &product, IsActive: true})

	body := []byte(`{"name":"Jane Roe","email":"jane@example.com","dateOfBirth":"1990-04-01","testSlug":"thyroid-profile","consent":true}`)
	resp := performRequest(t, http.MethodPost, "/checkout", NewCheckoutHandler(f.checkout, f.catalog).Checkout, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var decoded struct {
		URL     string `json:"url"`
		OrderID int64  `json:"orderId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.URL == "" || decoded.OrderID == 0 {
		t.Fatalf("unexpected response %+v", decoded)
	}
	order, err := f.orders.GetByID(context.Background(), decoded.OrderID)
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if order.Status != model.OrderStatusPending {
		t.Fatalf("expected PENDING order, got %s", order.Status)
	}
}

func TestCheckoutHandlerValidation(t *testing.T) {
	f := newFixture()
	body := []byte(`{"name":"J","email":"bad","dateOfBirth":"nope","testSlug":"","consent":false}`)
	resp := performRequest(t, http.MethodPost, "/checkout", NewCheckoutHandler(f.checkout, f.catalog).Checkout, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	var decoded struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded.Fields) == 0 {
		t.Fatal("expected field messages")
	}
}

func TestWebhookHandlerMissingSignature(t *testing.T) {
	f := newFixture()
	resp := performRequest(t, http.MethodPost, "/webhooks", NewWebhookHandler(f.webhooks).Handle, nil, []byte(`{}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestWebhookHandlerInvalidSignature(t *testing.T) {
	f := newFixture()
	resp := performRequest(t, http.MethodPost, "/webhooks", NewWebhookHandler(f.webhooks).Handle, nil, []byte(`{}`), map[string]string{"Stripe-Signature": "t=1,v1=bad"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestWebhookHandlerUnknownOrder(t *testing.T) {
	f := newFixture()
	f.gateway.VerifyWebhookFn = func([]byte, string) (*payments.Event, error) {
		return &payments.Event{
			ID:   "evt_1",
			Type: "checkout.session.completed",
			Session: &model.PaymentSession{
				ID:            "cs_live_1",
				Status:        model.SessionStatusComplete,
				PaymentStatus: model.SessionPaymentStatusPaid,
				OrderRef:      "41",
			},
		}, nil
	}

	headers := map[string]string{"Stripe-Signature": "t=1,v1=good"}
	resp := performRequest(t, http.MethodPost, "/webhooks", NewWebhookHandler(f.webhooks).Handle, nil, []byte(`{}`), headers)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", resp.Code, resp.Body.String())
	}
	if _, seen := f.events.Seen["evt_1"]; seen {
		t.Fatalf("failed delivery must not consume the event id")
	}
}

func TestOrderHandlerUpdateStatus(t *testing.T) {
	f := newFixture()
	order := f.orders.Add(model.Order{Status: model.OrderStatusPaid, PatientEmail: "jane@example.com"})

	body := []byte(`{"status":"DISPATCHED"}`)
	resp := performRouteRequest(t, http.MethodPatch, "/orders/:id", "/orders/"+itoa(order.ID), NewOrderHandler(f.orderUC).UpdateStatus, f.asAdmin, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	updated, _ := f.orders.GetByID(context.Background(), order.ID)
	if updated.Status != model.OrderStatusDispatched {
		t.Fatalf("expected DISPATCHED, got %s", updated.Status)
	}
}

func TestOrderHandlerUpdateStatusRejected(t *testing.T) {
	tests := []struct {
		name   string
		from   model.OrderStatus
		to     string
		status int
	}{
		{name: "unknown status", from: model.OrderStatusPaid, to: "SHIPPED", status: http.StatusBadRequest},
		{name: "paid via back office", from: model.OrderStatusPending, to: "PAID", status: http.StatusConflict},
		{name: "terminal order", from: model.OrderStatusReady, to: "CANCELLED", status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			order := f.orders.Add(model.Order{Status: tt.from})
			body := []byte(`{"status":"` + tt.to + `"}`)
			resp := performRouteRequest(t, http.MethodPatch, "/orders/:id", "/orders/"+itoa(order.ID), NewOrderHandler(f.orderUC).UpdateStatus, f.asAdmin, body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestResultHandlerUploadAndRelease(t *testing.T) {
	f := newFixture()
	clientID := int64(4)
	f.clients.Add(model.Client{ID: clientID, Email: "jane@example.com", Name: "Jane Roe", Active: true})
	test := f.tests.Add(model.BloodTest{Name: "Thyroid Profile", Slug: "thyroid-profile", IsActive: true})
	order := f.orders.Add(model.Order{Status: model.OrderStatusPaid, ClientID: &clientID, BloodTestID: &test.ID, PatientEmail: "jane@example.com"})

	handler := NewResultHandler(f.resultUC)

	createBody := []byte(`{"orderId":` + itoa(order.ID) + `,"bloodTestId":` + itoa(test.ID) + `,"clientId":` + itoa(clientID) + `}`)
	resp := performRequest(t, http.MethodPost, "/test-results", handler.Create, f.asAdmin, createBody, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Releasing before a file is attached must be refused.
	resp = performRouteRequest(t, http.MethodPatch, "/test-results/:id", "/test-results/"+itoa(created.ID), handler.Update, f.asAdmin, []byte(`{"status":"ready"}`), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409 before upload, got %d", resp.Code)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}
	_ = writer.Close()

	resp = performRouteRequest(t, http.MethodPost, "/test-results/:id/file", "/test-results/"+itoa(created.ID)+"/file", handler.UploadFile, f.asAdmin, buf.Bytes(), map[string]string{"Content-Type": writer.FormDataContentType()})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(f.store.Objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(f.store.Objects))
	}
	for key := range f.store.Objects {
		if !strings.HasPrefix(key, "thyroid-profile/4/") || !strings.HasSuffix(key, ".pdf") {
			t.Fatalf("unexpected object key %q", key)
		}
	}

	resp = performRouteRequest(t, http.MethodPatch, "/test-results/:id", "/test-results/"+itoa(created.ID), handler.Update, f.asAdmin, []byte(`{"status":"ready"}`), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := f.mail.Count("result_ready"); got != 1 {
		t.Fatalf("expected one result-ready email, got %d", got)
	}
}

func TestResultHandlerDownload(t *testing.T) {
	f := newFixture()
	clientID := int64(4)
	key := "thyroid-profile/4/abc.pdf"
	result := f.results.Add(model.TestResult{ClientID: &clientID, Status: model.ResultStatusReady, ResultKey: &key})

	handler := NewResultHandler(f.resultUC)

	// Owning patient.
	resp := performRouteRequest(t, http.MethodGet, "/download", "/download?id="+itoa(result.ID), handler.Download, func(c *gin.Context) {
		c.Set(middleware.ClientContextKey, &model.Client{ID: clientID, Active: true})
	}, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var decoded struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.URL != "https://storage.example.com/"+key {
		t.Fatalf("unexpected url %q", decoded.URL)
	}

	// Another patient.
	resp = performRouteRequest(t, http.MethodGet, "/download", "/download?id="+itoa(result.ID), handler.Download, func(c *gin.Context) {
		c.Set(middleware.ClientContextKey, &model.Client{ID: 99, Active: true})
	}, nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for foreign result, got %d", resp.Code)
	}

	// Admin may fetch any result.
	resp = performRouteRequest(t, http.MethodGet, "/download", "/download?id="+itoa(result.ID), handler.Download, f.asAdmin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", resp.Code)
	}

	// No session at all.
	resp = performRouteRequest(t, http.MethodGet, "/download", "/download?id="+itoa(result.ID), handler.Download, nil, nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without session, got %d", resp.Code)
	}
}

func TestAdminHandlerCreateUser(t *testing.T) {
	f := newFixture()
	handler := NewAdminHandler(f.adminUC, f.catalog)

	password := testhelpers.RandomASCIIString(12, 20)
	body := []byte(`{"email":"new@clinic.test","name":"New Staff","password":"` + password + `","role":"ADMIN"}`)
	resp := performRequest(t, http.MethodPost, "/users", handler.CreateUser, f.asAdmin, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = performRequest(t, http.MethodPost, "/users", handler.CreateUser, f.asAdmin, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate, got %d", resp.Code)
	}
}

func TestPatientHandlerAddresses(t *testing.T) {
	f := newFixture()
	handler := NewPatientHandler(f.clientUC, f.orderUC, f.resultUC, f.addrUC)
	asPatient := func(c *gin.Context) {
		c.Set(middleware.ClientContextKey, &model.Client{ID: 4, Active: true})
	}

	body := []byte(`{"type":"shipping","line1":"1 High St","city":"London","postcode":"N1 1AA","isDefault":true}`)
	resp := performRequest(t, http.MethodPost, "/addresses", handler.CreateAddress, asPatient, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = performRequest(t, http.MethodGet, "/addresses", handler.Addresses, asPatient, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []struct {
		Type    string `json:"type"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Type != "SHIPPING" || decoded[0].Country != "GB" {
		t.Fatalf("unexpected addresses %+v", decoded)
	}
}

type pingerStub struct {
	err error
}

func (p pingerStub) HealthCheck(context.Context) error { return p.err }

func TestDiagnosticHandlerStatus(t *testing.T) {
	cfg := &config.Config{StripeSecretKey: "sk_test", SendgridAPIKey: "sg_test"}

	resp := performRequest(t, http.MethodGet, "/diagnostic", NewDiagnosticHandler(pingerStub{}, cfg).Status, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded struct {
		Database         string `json:"database"`
		StripeConfigured bool   `json:"stripeConfigured"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Database != "ok" || !decoded.StripeConfigured {
		t.Fatalf("unexpected diagnostic %+v", decoded)
	}

	resp = performRequest(t, http.MethodGet, "/diagnostic", NewDiagnosticHandler(pingerStub{err: context.DeadlineExceeded}, cfg).Status, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
