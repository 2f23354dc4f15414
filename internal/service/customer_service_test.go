package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerFixture struct {
	customers *memCustomerRepo
	rentals   *memRentalRepo
	audit     *memAuditRepo
	svc       CustomerService
}

func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()

	f := &customerFixture{
		customers: newMemCustomerRepo(),
		rentals:   newMemRentalRepo(),
		audit:     &memAuditRepo{},
	}
	f.svc = NewCustomerService(f.customers, f.rentals, f.audit, fakeTxManager{})
	return f
}

func validCreateCustomerRequest() CreateCustomerRequest {
	return CreateCustomerRequest{
		FirstName:      "Jordan",
		LastName:       "Lee",
		Email:          "jordan.lee@example.com",
		DocumentNumber: "DOC-100",
		LicenseNumber:  "LIC-100",
		LicenseExpiry:  "2031-06-30",
	}
}

func TestCreateCustomer(t *testing.T) {
	f := newCustomerFixture(t)

	resp, err := f.svc.CreateCustomer(context.Background(), validCreateCustomerRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, "Jordan", resp.FirstName)
	assert.True(t, resp.IsActive)
	assert.False(t, resp.LicenseExpired)
	assert.Equal(t, []string{model.ActionCreateCustomer}, f.audit.actions())
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	f := newCustomerFixture(t)
	f.customers.add(&model.Customer{Email: "jordan.lee@example.com", IsActive: true})

	_, err := f.svc.CreateCustomer(context.Background(), validCreateCustomerRequest(), "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateCustomerDuplicateDocument(t *testing.T) {
	f := newCustomerFixture(t)
	f.customers.add(&model.Customer{Email: "other@example.com", DocumentNumber: "DOC-100", IsActive: true})

	_, err := f.svc.CreateCustomer(context.Background(), validCreateCustomerRequest(), "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateCustomerInvalidEmail(t *testing.T) {
	f := newCustomerFixture(t)

	req := validCreateCustomerRequest()
	req.Email = "not-an-email"
	_, err := f.svc.CreateCustomer(context.Background(), req, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetCustomerLicenseExpiredFlag(t *testing.T) {
	f := newCustomerFixture(t)
	c := f.customers.add(&model.Customer{
		FirstName:     "Max",
		LastName:      "Old",
		Email:         "max@example.com",
		LicenseExpiry: time.Now().Add(-24 * time.Hour),
		IsActive:      true,
	})

	resp, err := f.svc.GetCustomer(context.Background(), c.ID.String())
	require.NoError(t, err)
	assert.True(t, resp.LicenseExpired)
}

func TestUpdateCustomerEmailCollision(t *testing.T) {
	f := newCustomerFixture(t)
	f.customers.add(&model.Customer{Email: "taken@example.com", IsActive: true})
	c := f.customers.add(&model.Customer{Email: "mine@example.com", IsActive: true})

	taken := "taken@example.com"
	_, err := f.svc.UpdateCustomer(context.Background(), c.ID.String(), UpdateCustomerRequest{Email: &taken}, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateCustomerDeactivate(t *testing.T) {
	f := newCustomerFixture(t)
	c := f.customers.add(&model.Customer{Email: "mine@example.com", IsActive: true})

	inactive := false
	resp, err := f.svc.UpdateCustomer(context.Background(), c.ID.String(), UpdateCustomerRequest{IsActive: &inactive}, "")
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestDeleteCustomerBlockedByActiveRental(t *testing.T) {
	f := newCustomerFixture(t)
	c := f.customers.add(&model.Customer{Email: "renting@example.com", IsActive: true})
	f.rentals.add(&model.Rental{
		CustomerID: c.ID,
		StartDate:  time.Now(),
		EndDate:    time.Now().Add(48 * time.Hour),
		Status:     model.RentalActive,
	})

	err := f.svc.DeleteCustomer(context.Background(), c.ID.String(), "")
	require.ErrorIs(t, err, ErrConflict)
	assert.True(t, c.IsActive)
}

func TestDeleteCustomerDeactivates(t *testing.T) {
	f := newCustomerFixture(t)
	c := f.customers.add(&model.Customer{Email: "leaving@example.com", IsActive: true})

	require.NoError(t, f.svc.DeleteCustomer(context.Background(), c.ID.String(), ""))
	assert.False(t, c.IsActive)
}
