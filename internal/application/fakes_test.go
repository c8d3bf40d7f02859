package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/internal/domain/availability"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	userDomain "github.com/stayloop/service-booking/internal/domain/user"
	"github.com/stayloop/service-booking/pkg/apperror"
	"github.com/stayloop/service-booking/pkg/kafka"
)

// In-memory repository fakes for service-level tests. They enforce the same
// business failures as the GORM implementations (not-found, overlap conflict,
// payment dedup) without a database.

type memListings struct {
	mu    sync.Mutex
	items map[uuid.UUID]*listingDomain.Listing
	order []uuid.UUID
}

func newMemListings() *memListings {
	return &memListings{items: make(map[uuid.UUID]*listingDomain.Listing)}
}

func (m *memListings) FindByID(_ context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Listing", id.String())
	}
	return l, nil
}

func (m *memListings) FindByHostID(_ context.Context, hostID uuid.UUID) ([]*listingDomain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*listingDomain.Listing
	for _, id := range m.order {
		if m.items[id].IsOwnedBy(hostID) {
			out = append(out, m.items[id])
		}
	}
	return out, nil
}

func (m *memListings) ListAll(_ context.Context, page, limit int) ([]*listingDomain.Listing, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*listingDomain.Listing
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (m *memListings) Save(_ context.Context, l *listingDomain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[l.ID()] = l
	m.order = append(m.order, l.ID())
	return nil
}

func (m *memListings) Update(_ context.Context, l *listingDomain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[l.ID()]; !ok {
		return apperror.NewNotFoundError("Listing", l.ID().String())
	}
	m.items[l.ID()] = l
	return nil
}

type memPeriods struct {
	mu    sync.Mutex
	items map[uuid.UUID]*availability.Period
	order []uuid.UUID
}

func newMemPeriods() *memPeriods {
	return &memPeriods{items: make(map[uuid.UUID]*availability.Period)}
}

func (m *memPeriods) FindByID(_ context.Context, id uuid.UUID) (*availability.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperror.NewNotFoundError("AvailabilityPeriod", id.String())
	}
	return p, nil
}

func (m *memPeriods) FindByListingID(_ context.Context, listingID uuid.UUID) ([]*availability.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*availability.Period
	for _, id := range m.order {
		if m.items[id].ListingID() == listingID {
			out = append(out, m.items[id])
		}
	}
	return out, nil
}

func (m *memPeriods) Save(_ context.Context, p *availability.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		existing := m.items[id]
		if existing.ListingID() == p.ListingID() && existing.ConflictsWith(p) {
			return apperror.NewConflictError("period overlaps an existing availability period")
		}
	}
	m.items[p.ID()] = p
	m.order = append(m.order, p.ID())
	return nil
}

func (m *memPeriods) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperror.NewNotFoundError("AvailabilityPeriod", id.String())
	}
	delete(m.items, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type memBookings struct {
	mu    sync.Mutex
	items map[uuid.UUID]*bookingDomain.Booking
	order []uuid.UUID
}

func newMemBookings() *memBookings {
	return &memBookings{items: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (m *memBookings) add(b *bookingDomain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[b.ID()] = b
	m.order = append(m.order, b.ID())
}

func (m *memBookings) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Booking", id.String())
	}
	return b, nil
}

func (m *memBookings) FindActiveByListingID(_ context.Context, listingID uuid.UUID) ([]*bookingDomain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, id := range m.order {
		b := m.items[id]
		if b.ListingID() == listingID && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) FindByGuestID(_ context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, id := range m.order {
		if m.items[id].GuestID() == guestID {
			out = append(out, m.items[id])
		}
	}
	return paginate(out, page, limit)
}

func (m *memBookings) FindByListingID(_ context.Context, listingID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, id := range m.order {
		if m.items[id].ListingID() == listingID {
			out = append(out, m.items[id])
		}
	}
	return paginate(out, page, limit)
}

func (m *memBookings) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return paginate(out, page, limit)
}

func (m *memBookings) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range m.items {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (m *memBookings) Update(_ context.Context, b *bookingDomain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[b.ID()]; !ok {
		return apperror.NewNotFoundError("Booking", b.ID().String())
	}
	m.items[b.ID()] = b
	return nil
}

func paginate(in []*bookingDomain.Booking, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	total := int64(len(in))
	start := (page - 1) * limit
	if start >= len(in) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(in) {
		end = len(in)
	}
	return in[start:end], total, nil
}

type memUsers struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*userDomain.User
	credits map[string]bool
}

func newMemUsers() *memUsers {
	return &memUsers{
		items:   make(map[uuid.UUID]*userDomain.User),
		credits: make(map[string]bool),
	}
}

func (m *memUsers) add(u *userDomain.User) { m.items[u.ID()] = u }

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (m *memUsers) FindByExternalID(_ context.Context, externalID string) (*userDomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.ExternalID() == externalID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFoundError("User", externalID)
}

func (m *memUsers) Save(_ context.Context, u *userDomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ExternalID() == u.ExternalID() || existing.Email() == u.Email() {
			return apperror.NewConflictError("user already exists")
		}
	}
	m.items[u.ID()] = u
	return nil
}

func (m *memUsers) Update(_ context.Context, u *userDomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[u.ID()]; !ok {
		return apperror.NewNotFoundError("User", u.ID().String())
	}
	m.items[u.ID()] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperror.NewNotFoundError("User", id.String())
	}
	delete(m.items, id)
	return nil
}

func (m *memUsers) Credit(_ context.Context, id uuid.UUID, amount int64, paymentID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return 0, apperror.NewNotFoundError("User", id.String())
	}
	if m.credits[paymentID] {
		return u.Tokens(), nil
	}
	if err := u.Credit(amount); err != nil {
		return 0, err
	}
	m.credits[paymentID] = true
	return u.Tokens(), nil
}

// memLedger reserves against the in-memory stores with the same checks the
// transactional implementation runs.
type memLedger struct {
	users    *memUsers
	listings *memListings
	periods  *memPeriods
	bookings *memBookings
}

func (l *memLedger) Reserve(ctx context.Context, cmd bookingDomain.ReserveCommand) (*bookingDomain.Booking, error) {
	guest, err := l.users.FindByID(ctx, cmd.GuestID)
	if err != nil {
		return nil, apperror.NewUnauthorizedError("unknown guest")
	}
	lst, err := l.listings.FindByID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	quote, err := bookingDomain.NewQuote(cmd.Stay, lst.PricePerNight())
	if err != nil {
		return nil, err
	}
	if !quote.Matches(cmd.QuotedTotal) {
		return nil, apperror.NewValidationError("quoted total does not match the current price")
	}

	periods, err := l.periods.FindByListingID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	existing, err := l.bookings.FindActiveByListingID(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.CheckStay(cmd.Stay, periods, existing); err != nil {
		return nil, err
	}

	if err := guest.Debit(quote.Total); err != nil {
		return nil, err
	}

	booking, err := bookingDomain.NewBooking(cmd.ListingID, cmd.GuestID, cmd.Stay, quote.Total)
	if err != nil {
		return nil, err
	}
	l.bookings.add(booking)
	return booking, nil
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []kafka.CloudEvent
}

func (p *capturingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
