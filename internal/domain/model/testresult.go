package model

import "time"

// ResultStatus tracks a lab result from creation to file availability.
type ResultStatus string

const (
	ResultStatusProcessing ResultStatus = "processing"
	ResultStatusReady      ResultStatus = "ready"
)

// TestResult is one uploaded lab result tied to an order and a blood test.
// ResultKey is the object-storage key of the uploaded file, nil until a
// file has been attached.
type TestResult struct {
	ID          int64
	OrderID     int64
	BloodTestID int64
	ClientID    *int64
	Status      ResultStatus
	ResultKey   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
