package test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

// AdminRepositoryStub stores admins in-memory for tests.
type AdminRepositoryStub struct {
	ByEmail map[string]*model.Admin
	ByID    map[int64]*model.Admin
	Next    int64
	Err     error
}

// NewAdminRepositoryStub constructs stub repository with initialized maps.
func NewAdminRepositoryStub() *AdminRepositoryStub {
	return &AdminRepositoryStub{
		ByEmail: make(map[string]*model.Admin),
		ByID:    make(map[int64]*model.Admin),
		Next:    1,
	}
}

// Add seeds an admin and returns it.
func (s *AdminRepositoryStub) Add(a model.Admin) *model.Admin {
	if a.ID == 0 {
		a.ID = s.Next
		s.Next++
	} else if a.ID >= s.Next {
		s.Next = a.ID + 1
	}
	stored := a
	s.ByEmail[stored.Email] = &stored
	s.ByID[stored.ID] = &stored
	return &stored
}

// Create registers an admin unless the email is taken.
func (s *AdminRepositoryStub) Create(ctx context.Context, email, name, passwordHash string, role model.AdminRole) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByEmail[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	return s.Add(model.Admin{Email: email, Name: name, PasswordHash: passwordHash, Role: role, Active: true}), nil
}

// GetByEmail fetches an admin by email or returns not found.
func (s *AdminRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if a, ok := s.ByEmail[email]; ok {
		return a, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches an admin by id or returns not found.
func (s *AdminRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if a, ok := s.ByID[id]; ok {
		return a, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns all stored admins.
func (s *AdminRepositoryStub) List(ctx context.Context) ([]model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Admin, 0, len(s.ByID))
	for _, a := range s.ByID {
		out = append(out, *a)
	}
	return out, nil
}

// Update applies non-nil fields to a stored admin.
func (s *AdminRepositoryStub) Update(ctx context.Context, id int64, name *string, role *model.AdminRole, active *bool) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if name != nil {
		a.Name = *name
	}
	if role != nil {
		a.Role = *role
	}
	if active != nil {
		a.Active = *active
	}
	return a, nil
}

// SetResetToken stores a reset token on the admin.
func (s *AdminRepositoryStub) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	a, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	a.ResetToken = &token
	a.ResetTokenExpiry = &expiry
	return nil
}

// GetByResetToken finds an admin holding an unexpired token.
func (s *AdminRepositoryStub) GetByResetToken(ctx context.Context, token string) (*model.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.ByID {
		if a.ResetToken != nil && *a.ResetToken == token && a.ResetTokenExpiry != nil && a.ResetTokenExpiry.After(time.Now()) {
			return a, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ResetPassword replaces the password hash and clears the token.
func (s *AdminRepositoryStub) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	if s.Err != nil {
		return s.Err
	}
	a, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.ResetToken = nil
	a.ResetTokenExpiry = nil
	return nil
}

// TouchLastLogin stamps the login time.
func (s *AdminRepositoryStub) TouchLastLogin(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	a, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	now := time.Now()
	a.LastLoginAt = &now
	return nil
}

// Activate reactivates a stored admin.
func (s *AdminRepositoryStub) Activate(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	a, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	a.Active = true
	return nil
}

// ClientRepositoryStub stores patient accounts in-memory for tests.
type ClientRepositoryStub struct {
	ByEmail map[string]*model.Client
	ByID    map[int64]*model.Client
	Next    int64
	Err     error
}

// NewClientRepositoryStub constructs stub repository with initialized maps.
func NewClientRepositoryStub() *ClientRepositoryStub {
	return &ClientRepositoryStub{
		ByEmail: make(map[string]*model.Client),
		ByID:    make(map[int64]*model.Client),
		Next:    1,
	}
}

// Add seeds a client and returns it.
func (s *ClientRepositoryStub) Add(c model.Client) *model.Client {
	if c.ID == 0 {
		c.ID = s.Next
		s.Next++
	} else if c.ID >= s.Next {
		s.Next = c.ID + 1
	}
	stored := c
	s.ByEmail[stored.Email] = &stored
	s.ByID[stored.ID] = &stored
	return &stored
}

// Create registers a client unless the email is taken.
func (s *ClientRepositoryStub) Create(ctx context.Context, email, name, passwordHash string, dateOfBirth time.Time, mobile string) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByEmail[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	return s.Add(model.Client{Email: email, Name: name, PasswordHash: passwordHash, DateOfBirth: dateOfBirth, Mobile: mobile, Active: true}), nil
}

// GetByEmail fetches a client by email or returns not found.
func (s *ClientRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.ByEmail[email]; ok {
		return c, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches a client by id or returns not found.
func (s *ClientRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.ByID[id]; ok {
		return c, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns all stored clients.
func (s *ClientRepositoryStub) List(ctx context.Context) ([]model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Client, 0, len(s.ByID))
	for _, c := range s.ByID {
		out = append(out, *c)
	}
	return out, nil
}

// Update applies non-nil fields to a stored client.
func (s *ClientRepositoryStub) Update(ctx context.Context, id int64, name, mobile *string, active *bool) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if name != nil {
		c.Name = *name
	}
	if mobile != nil {
		c.Mobile = *mobile
	}
	if active != nil {
		c.Active = *active
	}
	return c, nil
}

// SetStripeCustomer records the provider customer id.
func (s *ClientRepositoryStub) SetStripeCustomer(ctx context.Context, id int64, customerID string) error {
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	c.StripeCustomerID = &customerID
	return nil
}

// SetResetToken stores a reset token on the client.
func (s *ClientRepositoryStub) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	c.ResetToken = &token
	c.ResetTokenExpiry = &expiry
	return nil
}

// GetByResetToken finds a client holding an unexpired token.
func (s *ClientRepositoryStub) GetByResetToken(ctx context.Context, token string) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, c := range s.ByID {
		if c.ResetToken != nil && *c.ResetToken == token && c.ResetTokenExpiry != nil && c.ResetTokenExpiry.After(time.Now()) {
			return c, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ResetPassword replaces the password hash and clears the token.
func (s *ClientRepositoryStub) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	c.PasswordHash = passwordHash
	c.ResetToken = nil
	c.ResetTokenExpiry = nil
	return nil
}

// TouchLastLogin stamps the login time.
func (s *ClientRepositoryStub) TouchLastLogin(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	now := time.Now()
	c.LastLoginAt = &now
	return nil
}

// OrderRepositoryStub stores orders in-memory and enforces the status FSM
// the way the real repository does.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[int64]*model.Order
	Next   int64
	Err    error
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order), Next: 1}
}

// Add seeds an order and returns it.
func (s *OrderRepositoryStub) Add(o model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.Next
		s.Next++
	} else if o.ID >= s.Next {
		s.Next = o.ID + 1
	}
	stored := o
	s.Orders[stored.ID] = &stored
	return &stored
}

// Create registers a pending order.
func (s *OrderRepositoryStub) Create(ctx context.Context, o repository.NewOrder) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Add(model.Order{
		ClientID:      o.ClientID,
		PatientName:   o.PatientName,
		PatientEmail:  o.PatientEmail,
		PatientDOB:    o.PatientDOB,
		PatientMobile: o.PatientMobile,
		BloodTestID:   &o.BloodTestID,
		TestName:      o.TestName,
		Status:        model.OrderStatusPending,
		Notes:         o.Notes,
		CreatedAt:     time.Now(),
	}), nil
}

// GetByID fetches an order or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.Orders[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetBySessionID fetches an order by checkout session id.
func (s *OrderRepositoryStub) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.StripeSessionID == sessionID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// List returns stored orders, optionally filtered by status.
func (s *OrderRepositoryStub) List(ctx context.Context, status *model.OrderStatus, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, *o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ListByClient returns orders owned by the client.
func (s *OrderRepositoryStub) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.ClientID != nil && *o.ClientID == clientID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// AttachSession stores the checkout session id on the order.
func (s *OrderRepositoryStub) AttachSession(ctx context.Context, id int64, sessionID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.StripeSessionID = sessionID
	return nil
}

// UpdateStatus applies an FSM-checked transition.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id int64, to model.OrderStatus) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if !model.CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// MarkPaid transitions PENDING to PAID once; repeated calls are no-ops.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, id int64, addr *model.ShippingAddress, paymentIntentID string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if o.Status == model.OrderStatusPaid {
		return false, nil
	}
	if o.Status != model.OrderStatusPending {
		return false, fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, o.Status, model.OrderStatusPaid)
	}
	o.Status = model.OrderStatusPaid
	o.ShippingAddress = addr
	o.PaymentIntentID = paymentIntentID
	return true, nil
}

// SelectStalePending returns pending orders older than age.
func (s *OrderRepositoryStub) SelectStalePending(ctx context.Context, age time.Duration, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-age)
	var out []model.Order
	for _, o := range s.Orders {
		if o.Status == model.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			out = append(out, *o)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// BloodTestRepositoryStub stores catalog rows in-memory for tests.
type BloodTestRepositoryStub struct {
	Tests     map[string]*model.BloodTest
	ByID      map[int64]*model.BloodTest
	Next      int64
	Err       error
	Applied   []model.CatalogEntry
	ApplyFn   func([]model.CatalogEntry) (*model.SyncReport, error)
	ApplyRept *model.SyncReport
}

// NewBloodTestRepositoryStub constructs stub repository with initialized maps.
func NewBloodTestRepositoryStub() *BloodTestRepositoryStub {
	return &BloodTestRepositoryStub{
		Tests: make(map[string]*model.BloodTest),
		ByID:  make(map[int64]*model.BloodTest),
		Next:  1,
	}
}

// Add seeds a blood test and returns it.
func (s *BloodTestRepositoryStub) Add(t model.BloodTest) *model.BloodTest {
	if t.ID == 0 {
		t.ID = s.Next
		s.Next++
	} else if t.ID >= s.Next {
		s.Next = t.ID + 1
	}
	stored := t
	s.Tests[stored.Slug] = &stored
	s.ByID[stored.ID] = &stored
	return &stored
}

// List returns stored tests, optionally active only.
func (s *BloodTestRepositoryStub) List(ctx context.Context, activeOnly bool) ([]model.BloodTest, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.BloodTest, 0, len(s.ByID))
	for _, t := range s.ByID {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

// GetBySlug fetches a test by slug or returns not found.
func (s *BloodTestRepositoryStub) GetBySlug(ctx context.Context, slug string) (*model.BloodTest, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if t, ok := s.Tests[slug]; ok {
		return t, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches a test by id or returns not found.
func (s *BloodTestRepositoryStub) GetByID(ctx context.Context, id int64) (*model.BloodTest, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if t, ok := s.ByID[id]; ok {
		return t, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ApplyCatalog records the reconciled snapshot.
func (s *BloodTestRepositoryStub) ApplyCatalog(ctx context.Context, entries []model.CatalogEntry) (*model.SyncReport, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.Applied = entries
	if s.ApplyFn != nil {
		return s.ApplyFn(entries)
	}
	if s.ApplyRept != nil {
		return s.ApplyRept, nil
	}
	return &model.SyncReport{Created: len(entries)}, nil
}

// TestResultRepositoryStub stores lab results in-memory for tests.
type TestResultRepositoryStub struct {
	Results map[int64]*model.TestResult
	Next    int64
	Err     error
}

// NewTestResultRepositoryStub constructs stub repository with initialized maps.
func NewTestResultRepositoryStub() *TestResultRepositoryStub {
	return &TestResultRepositoryStub{Results: make(map[int64]*model.TestResult), Next: 1}
}

// Add seeds a result and returns it.
func (s *TestResultRepositoryStub) Add(r model.TestResult) *model.TestResult {
	if r.ID == 0 {
		r.ID = s.Next
		s.Next++
	} else if r.ID >= s.Next {
		s.Next = r.ID + 1
	}
	stored := r
	s.Results[stored.ID] = &stored
	return &stored
}

// Create registers a processing result.
func (s *TestResultRepositoryStub) Create(ctx context.Context, orderID, bloodTestID int64, clientID *int64) (*model.TestResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Add(model.TestResult{OrderID: orderID, BloodTestID: bloodTestID, ClientID: clientID, Status: model.ResultStatusProcessing}), nil
}

// GetByID fetches a result or returns not found.
func (s *TestResultRepositoryStub) GetByID(ctx context.Context, id int64) (*model.TestResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if r, ok := s.Results[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByClient returns results owned by the client.
func (s *TestResultRepositoryStub) ListByClient(ctx context.Context, clientID int64) ([]model.TestResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.TestResult
	for _, r := range s.Results {
		if r.ClientID != nil && *r.ClientID == clientID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// AttachFile stores the object key on the result.
func (s *TestResultRepositoryStub) AttachFile(ctx context.Context, id int64, key string) error {
	if s.Err != nil {
		return s.Err
	}
	r, ok := s.Results[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	r.ResultKey = &key
	return nil
}

// MarkReady transitions processing to ready once.
func (s *TestResultRepositoryStub) MarkReady(ctx context.Context, id int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	r, ok := s.Results[id]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if r.Status == model.ResultStatusReady {
		return false, nil
	}
	if r.ResultKey == nil {
		return false, domainErrors.ErrResultNotReady
	}
	r.Status = model.ResultStatusReady
	return true, nil
}

// Delete removes the result.
func (s *TestResultRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Results[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Results, id)
	return nil
}

// AddressRepositoryStub stores addresses in-memory for tests.
type AddressRepositoryStub struct {
	Addresses map[int64]*model.Address
	Next      int64
	Err       error
}

// NewAddressRepositoryStub constructs stub repository with initialized maps.
func NewAddressRepositoryStub() *AddressRepositoryStub {
	return &AddressRepositoryStub{Addresses: make(map[int64]*model.Address), Next: 1}
}

// Add seeds an address and returns it.
func (s *AddressRepositoryStub) Add(a model.Address) *model.Address {
	if a.ID == 0 {
		a.ID = s.Next
		s.Next++
	} else if a.ID >= s.Next {
		s.Next = a.ID + 1
	}
	stored := a
	s.Addresses[stored.ID] = &stored
	return &stored
}

// Create registers an address.
func (s *AddressRepositoryStub) Create(ctx context.Context, a *model.Address) (*model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Add(*a), nil
}

// GetByID fetches an address or returns not found.
func (s *AddressRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if a, ok := s.Addresses[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByClient returns addresses owned by the client.
func (s *AddressRepositoryStub) ListByClient(ctx context.Context, clientID int64) ([]model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Address
	for _, a := range s.Addresses {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// Update replaces a stored address.
func (s *AddressRepositoryStub) Update(ctx context.Context, a *model.Address) (*model.Address, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	stored, ok := s.Addresses[a.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	*stored = *a
	copied := *stored
	return &copied, nil
}

// Delete removes the address.
func (s *AddressRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Addresses[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Addresses, id)
	return nil
}

// SetDefault marks the address default for its type.
func (s *AddressRepositoryStub) SetDefault(ctx context.Context, clientID, addressID int64) error {
	if s.Err != nil {
		return s.Err
	}
	target, ok := s.Addresses[addressID]
	if !ok || target.ClientID != clientID {
		return domainErrors.ErrNotFound
	}
	for _, a := range s.Addresses {
		if a.ClientID == clientID && a.Type == target.Type {
			a.IsDefault = a.ID == addressID
		}
	}
	return nil
}

// AuditLogRepositoryStub records audit entries for assertions.
type AuditLogRepositoryStub struct {
	Entries []model.AuditLog
	Err     error
}

// NewAuditLogRepositoryStub constructs an empty audit log stub.
func NewAuditLogRepositoryStub() *AuditLogRepositoryStub {
	return &AuditLogRepositoryStub{}
}

// Append stores the entry.
func (s *AuditLogRepositoryStub) Append(ctx context.Context, adminID int64, action, entityType, entityID string, details json.RawMessage) error {
	if s.Err != nil {
		return s.Err
	}
	s.Entries = append(s.Entries, model.AuditLog{
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now(),
	})
	return nil
}

// ListRecent returns recorded entries, newest last.
func (s *AuditLogRepositoryStub) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if limit > 0 && len(s.Entries) > limit {
		return s.Entries[len(s.Entries)-limit:], nil
	}
	return s.Entries, nil
}

// WebhookEventRepositoryStub tracks processed event ids.
type WebhookEventRepositoryStub struct {
	mu   sync.Mutex
	Seen map[string]string
	Err  error
}

// NewWebhookEventRepositoryStub constructs the stub with an initialized set.
func NewWebhookEventRepositoryStub() *WebhookEventRepositoryStub {
	return &WebhookEventRepositoryStub{Seen: make(map[string]string)}
}

// MarkProcessed records the event id, reporting first delivery.
func (s *WebhookEventRepositoryStub) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Seen == nil {
		s.Seen = make(map[string]string)
	}
	if _, ok := s.Seen[eventID]; ok {
		return false, nil
	}
	s.Seen[eventID] = eventType
	return true, nil
}
