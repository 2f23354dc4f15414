package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They keep entities in maps and implement just
// enough query behavior (overlap counting, active counting) for the service
// logic under test.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- vehicles ---

type memVehicleRepo struct {
	vehicles map[uuid.UUID]*model.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[uuid.UUID]*model.Vehicle)}
}

func (r *memVehicleRepo) add(v *model.Vehicle) *model.Vehicle {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.vehicles[v.ID] = v
	return v
}

func (r *memVehicleRepo) Create(_ context.Context, v *model.Vehicle) error {
	r.add(v)
	return nil
}

func (r *memVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	if v, ok := r.vehicles[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memVehicleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return r.FindByID(ctx, id)
}

func (r *memVehicleRepo) FindByPlate(_ context.Context, plate string) (*model.Vehicle, error) {
	for _, v := range r.vehicles {
		if v.Plate == plate {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memVehicleRepo) List(_ context.Context, _ repository.VehicleListFilter) ([]model.Vehicle, int64, error) {
	out := make([]model.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *memVehicleRepo) Update(_ context.Context, v *model.Vehicle) error {
	r.vehicles[v.ID] = v
	return nil
}

func (r *memVehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.vehicles, id)
	return nil
}

// --- rentals ---

type memRentalRepo struct {
	rentals map[uuid.UUID]*model.Rental
	// failDuplicates makes the next N Create calls fail with
	// gorm.ErrDuplicatedKey, exercising the number retry path.
	failDuplicates int
}

func newMemRentalRepo() *memRentalRepo {
	return &memRentalRepo{rentals: make(map[uuid.UUID]*model.Rental)}
}

func (r *memRentalRepo) add(rental *model.Rental) *model.Rental {
	if rental.ID == uuid.Nil {
		rental.ID = uuid.New()
	}
	r.rentals[rental.ID] = rental
	return rental
}

func (r *memRentalRepo) Create(_ context.Context, rental *model.Rental) error {
	if r.failDuplicates > 0 {
		r.failDuplicates--
		return gorm.ErrDuplicatedKey
	}
	r.add(rental)
	return nil
}

func (r *memRentalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Rental, error) {
	if rental, ok := r.rentals[id]; ok {
		return rental, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRentalRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	return r.FindByID(ctx, id)
}

func (r *memRentalRepo) List(_ context.Context, _ repository.RentalListFilter) ([]model.Rental, int64, error) {
	out := make([]model.Rental, 0, len(r.rentals))
	for _, rental := range r.rentals {
		out = append(out, *rental)
	}
	return out, int64(len(out)), nil
}

func (r *memRentalRepo) Update(_ context.Context, rental *model.Rental) error {
	if _, ok := r.rentals[rental.ID]; !ok {
		return errors.New("rental does not exist")
	}
	r.rentals[rental.ID] = rental
	return nil
}

func isActiveStatus(status string) bool {
	for _, s := range model.ActiveRentalStatuses {
		if status == s {
			return true
		}
	}
	return false
}

func (r *memRentalRepo) CountOverlapping(_ context.Context, vehicleID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int64, error) {
	var count int64
	for _, rental := range r.rentals {
		if rental.VehicleID != vehicleID || !isActiveStatus(rental.Status) {
			continue
		}
		if exclude != nil && rental.ID == *exclude {
			continue
		}
		if !rental.StartDate.After(end) && !rental.EndDate.Before(start) {
			count++
		}
	}
	return count, nil
}

func (r *memRentalRepo) CountActiveByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	for _, rental := range r.rentals {
		if rental.CustomerID == customerID && isActiveStatus(rental.Status) {
			count++
		}
	}
	return count, nil
}

func (r *memRentalRepo) CountActiveByVehicle(_ context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	for _, rental := range r.rentals {
		if rental.VehicleID == vehicleID && isActiveStatus(rental.Status) {
			count++
		}
	}
	return count, nil
}

// --- customers ---

type memCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *memCustomerRepo) add(c *model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return c
}

func (r *memCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.add(c)
	return nil
}

func (r *memCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) FindByEmail(_ context.Context, email string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) FindByDocumentNumber(_ context.Context, doc string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.DocumentNumber == doc {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) FindByLicenseNumber(_ context.Context, license string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.LicenseNumber == license {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) List(_ context.Context, _ repository.CustomerListFilter) ([]model.Customer, int64, error) {
	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *memCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

// --- maintenance ---

type memMaintenanceRepo struct {
	records map[uuid.UUID]*model.Maintenance
}

func newMemMaintenanceRepo() *memMaintenanceRepo {
	return &memMaintenanceRepo{records: make(map[uuid.UUID]*model.Maintenance)}
}

func (r *memMaintenanceRepo) add(m *model.Maintenance) *model.Maintenance {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.records[m.ID] = m
	return m
}

func (r *memMaintenanceRepo) Create(_ context.Context, m *model.Maintenance) error {
	r.add(m)
	return nil
}

func (r *memMaintenanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Maintenance, error) {
	if m, ok := r.records[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memMaintenanceRepo) FindByIDWithVehicle(ctx context.Context, id uuid.UUID) (*model.Maintenance, error) {
	return r.FindByID(ctx, id)
}

func (r *memMaintenanceRepo) List(_ context.Context, _ repository.MaintenanceListFilter) ([]model.Maintenance, int64, error) {
	out := make([]model.Maintenance, 0, len(r.records))
	for _, m := range r.records {
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *memMaintenanceRepo) Update(_ context.Context, m *model.Maintenance) error {
	r.records[m.ID] = m
	return nil
}

func (r *memMaintenanceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

func (r *memMaintenanceRepo) CountOpenByVehicle(_ context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range r.records {
		if m.VehicleID != vehicleID {
			continue
		}
		switch m.Status {
		case model.MaintenanceScheduled, model.MaintenanceInProgress, model.MaintenanceOverdue:
			count++
		}
	}
	return count, nil
}

func (r *memMaintenanceRepo) MarkOverdue(_ context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for _, m := range r.records {
		if m.Status == model.MaintenanceScheduled && m.ScheduledDate.Before(cutoff) {
			m.Status = model.MaintenanceOverdue
			count++
		}
	}
	return count, nil
}

// --- audit ---

type memAuditRepo struct {
	entries []*model.AuditLog
	// failWith makes Log fail, exercising audit error propagation.
	failWith error
}

func (r *memAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	out := make([]model.AuditLog, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *memAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- events ---

type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) BroadcastEvent(event string, _ interface{}) {
	b.events = append(b.events, event)
}

// --- users ---

type memUserRepo struct {
	users  map[string]*model.User
	tokens map[string]*model.RefreshToken
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:  make(map[string]*model.User),
		tokens: make(map[string]*model.RefreshToken),
	}
}

func (r *memUserRepo) add(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID.String()] = u
	return u
}

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	r.add(u)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID.String()] = u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) CreateRefreshToken(_ context.Context, token *model.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *memUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	if rt, ok := r.tokens[token]; ok && rt.ExpiresAt.After(time.Now()) {
		return rt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *memUserRepo) DeleteRefreshTokensForUser(_ context.Context, userID uuid.UUID) error {
	for key, rt := range r.tokens {
		if rt.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}
