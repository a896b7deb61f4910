package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

// AddressInput is the patient-facing address form.
type AddressInput struct {
	Type      string
	Line1     string
	Line2     string
	City      string
	Postcode  string
	Country   string
	IsDefault bool
}

// AddressUseCase manages a patient's address book. Every operation checks
// the address belongs to the calling patient.
type AddressUseCase struct {
	addresses repository.AddressRepository
}

// NewAddressUseCase constructs AddressUseCase.
func NewAddressUseCase(addresses repository.AddressRepository) *AddressUseCase {
	return &AddressUseCase{addresses: addresses}
}

func validateAddress(in AddressInput) (*model.Address, error) {
	fields := map[string]string{}

	addrType := model.AddressType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if addrType != model.AddressTypeShipping && addrType != model.AddressTypeBilling {
		fields["type"] = "type must be SHIPPING or BILLING"
	}
	if strings.TrimSpace(in.Line1) == "" {
		fields["line1"] = "line1 is required"
	}
	if strings.TrimSpace(in.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(in.Postcode) == "" {
		fields["postcode"] = "postcode is required"
	}
	if len(fields) > 0 {
		return nil, &domainErrors.ValidationError{Fields: fields}
	}

	country := strings.ToUpper(strings.TrimSpace(in.Country))
	if country == "" {
		country = "GB"
	}
	return &model.Address{
		Type:      addrType,
		Line1:     strings.TrimSpace(in.Line1),
		Line2:     strings.TrimSpace(in.Line2),
		City:      strings.TrimSpace(in.City),
		Postcode:  strings.TrimSpace(in.Postcode),
		Country:   country,
		IsDefault: in.IsDefault,
	}, nil
}

// List returns the patient's addresses, default first.
func (u *AddressUseCase) List(ctx context.Context, clientID int64) ([]model.Address, error) {
	return u.addresses.ListByClient(ctx, clientID)
}

// Create adds an address; when flagged default it displaces the previous
// default of that type.
func (u *AddressUseCase) Create(ctx context.Context, clientID int64, in AddressInput) (*model.Address, error) {
	address, err := validateAddress(in)
	if err != nil {
		return nil, err
	}
	address.ClientID = clientID

	created, err := u.addresses.Create(ctx, address)
	if err != nil {
		return nil, err
	}
	if created.IsDefault {
		if err := u.addresses.SetDefault(ctx, clientID, created.ID); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// Update replaces an address the patient owns.
func (u *AddressUseCase) Update(ctx context.Context, clientID, addressID int64, in AddressInput) (*model.Address, error) {
	existing, err := u.addresses.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if existing.ClientID != clientID {
		return nil, domainErrors.ErrForbidden
	}

	address, err := validateAddress(in)
	if err != nil {
		return nil, err
	}
	address.ID = addressID
	address.ClientID = clientID

	updated, err := u.addresses.Update(ctx, address)
	if err != nil {
		return nil, err
	}
	if in.IsDefault && !existing.IsDefault {
		if err := u.addresses.SetDefault(ctx, clientID, addressID); err != nil {
			return nil, err
		}
		updated.IsDefault = true
	}
	return updated, nil
}

// Delete removes an address the patient owns.
func (u *AddressUseCase) Delete(ctx context.Context, clientID, addressID int64) error {
	existing, err := u.addresses.GetByID(ctx, addressID)
	if err != nil {
		return err
	}
	if existing.ClientID != clientID {
		return domainErrors.ErrForbidden
	}
	return u.addresses.Delete(ctx, addressID)
}
