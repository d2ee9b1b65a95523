package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/storage"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
)

// memStore backs every fake repository with maps guarded by one mutex.
type memStore struct {
	mu            sync.Mutex
	lock          sync.Mutex
	users         map[uuid.UUID]*entity.User
	sessions      map[uuid.UUID]*entity.Session
	otps          map[uuid.UUID]*entity.OTP
	properties    map[uuid.UUID]*entity.Property
	favorites     map[uuid.UUID]map[uuid.UUID]bool
	bookings      map[uuid.UUID]*entity.Booking
	payments      map[uuid.UUID]*entity.Payment
	reviews       map[uuid.UUID]*entity.Review
	notifications map[uuid.UUID]*entity.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*entity.User{},
		sessions:      map[uuid.UUID]*entity.Session{},
		otps:          map[uuid.UUID]*entity.OTP{},
		properties:    map[uuid.UUID]*entity.Property{},
		favorites:     map[uuid.UUID]map[uuid.UUID]bool{},
		bookings:      map[uuid.UUID]*entity.Booking{},
		payments:      map[uuid.UUID]*entity.Payment{},
		reviews:       map[uuid.UUID]*entity.Review{},
		notifications: map[uuid.UUID]*entity.Notification{},
	}
}

func (m *memStore) repository() *repository.Repository {
	repo := m.queriers()
	repo.Tx = &fakeTx{store: m}
	return repo
}

func (m *memStore) queriers() *repository.Repository {
	return &repository.Repository{
		User:         &fakeUserRepo{m},
		Session:      &fakeSessionRepo{m},
		OTP:          &fakeOTPRepo{m},
		Property:     &fakePropertyRepo{m},
		Booking:      &fakeBookingRepo{m},
		Payment:      &fakePaymentRepo{m},
		Review:       &fakeReviewRepo{m},
		Notification: &fakeNotificationRepo{m},
	}
}

// fakeTx serializes every locked section, which is stricter than a per-row
// lock but gives the same guarantee for a single property.
type fakeTx struct {
	store *memStore
}

func (t *fakeTx) WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(tx *repository.Repository, property *entity.Property) error) error {
	t.store.lock.Lock()
	defer t.store.lock.Unlock()

	repo := t.store.queriers()
	property, err := repo.Property.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}
	return fn(repo, property)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ---- users ----

type fakeUserRepo struct{ m *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.User
	for _, u := range r.m.users {
		if u.DeletedAt == nil {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	all, _ := r.FindAll(ctx, 1<<30, 0)
	return int64(len(all)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.users[id]; ok {
		now := time.Now()
		u.DeletedAt = &now
	}
	return nil
}

// ---- sessions ----

type fakeSessionRepo struct{ m *memStore }

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *session
	r.m.sessions[session.Token] = &cp
	return nil
}

func (r *fakeSessionRepo) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil || s.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, token uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.sessions[token]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := time.Now()
	for _, s := range r.m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(context.Context) (int64, error) {
	return 0, nil
}

// ---- otps ----

type fakeOTPRepo struct{ m *memStore }

func (r *fakeOTPRepo) Create(_ context.Context, otp *entity.OTP) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *otp
	r.m.otps[otp.ID] = &cp
	return nil
}

func (r *fakeOTPRepo) FindValidOTP(_ context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.otps {
		if o.Email == email && o.OTPCode == code && o.OTPType == otpType && !o.IsUsed && o.ExpiresAt.After(time.Now()) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOTPRepo) MarkAsUsed(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if o, ok := r.m.otps[id]; ok {
		o.IsUsed = true
	}
	return nil
}

func (r *fakeOTPRepo) InvalidateForUser(_ context.Context, userID uuid.UUID, otpType entity.OTPType) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.otps {
		if o.UserID == userID && o.OTPType == otpType {
			o.IsUsed = true
		}
	}
	return nil
}

func (r *fakeOTPRepo) CleanExpired(context.Context) (int64, error) {
	return 0, nil
}

// ---- properties ----

type fakePropertyRepo struct{ m *memStore }

func (r *fakePropertyRepo) copyOf(p *entity.Property) *entity.Property {
	cp := *p
	cp.Images = append([]entity.Image(nil), p.Images...)
	cp.FavoritesCount = len(r.m.favorites[p.ID])
	return &cp
}

func (r *fakePropertyRepo) Create(_ context.Context, p *entity.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.properties[p.ID] = r.copyOf(p)
	return nil
}

func (r *fakePropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.properties[id]
	if !ok {
		return nil, nil
	}
	return r.copyOf(p), nil
}

func (r *fakePropertyRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePropertyRepo) List(_ context.Context, filter repository.PropertyFilter, limit, offset int) ([]*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Property
	for _, p := range r.m.properties {
		if filter.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.MinPrice != nil && p.Price.Amount < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price.Amount > *filter.MaxPrice {
			continue
		}
		out = append(out, r.copyOf(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *fakePropertyRepo) Count(ctx context.Context, filter repository.PropertyFilter) (int64, error) {
	all, _ := r.List(ctx, filter, 1<<30, 0)
	return int64(len(all)), nil
}

func (r *fakePropertyRepo) FindByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Property
	for _, p := range r.m.properties {
		if p.OwnerID == ownerID {
			out = append(out, r.copyOf(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *fakePropertyRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	all, _ := r.FindByOwner(ctx, ownerID, 1<<30, 0)
	return int64(len(all)), nil
}

func (r *fakePropertyRepo) Update(_ context.Context, p *entity.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.properties[p.ID] = r.copyOf(p)
	return nil
}

func (r *fakePropertyRepo) UpdateImages(_ context.Context, id uuid.UUID, images []entity.Image) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.properties[id]; ok {
		p.Images = append([]entity.Image(nil), images...)
	}
	return nil
}

func (r *fakePropertyRepo) UpdateRating(_ context.Context, id uuid.UUID, average float64, count int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.properties[id]; ok {
		p.RatingAverage = average
		p.RatingCount = count
	}
	return nil
}

func (r *fakePropertyRepo) IncrementViews(_ context.Context, id uuid.UUID) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.properties[id]
	if !ok {
		return 0, nil
	}
	p.Views++
	return p.Views, nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.properties, id)
	delete(r.m.favorites, id)
	for bid, b := range r.m.bookings {
		if b.PropertyID == id {
			delete(r.m.bookings, bid)
		}
	}
	for rid, rv := range r.m.reviews {
		if rv.PropertyID == id {
			delete(r.m.reviews, rid)
		}
	}
	return nil
}

func (r *fakePropertyRepo) ToggleFavorite(_ context.Context, propertyID, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	favs := r.m.favorites[propertyID]
	if favs == nil {
		favs = map[uuid.UUID]bool{}
		r.m.favorites[propertyID] = favs
	}
	if favs[userID] {
		delete(favs, userID)
		return false, nil
	}
	favs[userID] = true
	return true, nil
}

func (r *fakePropertyRepo) FindFavoritesByUser(_ context.Context, userID uuid.UUID) ([]*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Property
	for pid, favs := range r.m.favorites {
		if p, ok := r.m.properties[pid]; ok && favs[userID] {
			out = append(out, r.copyOf(p))
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) DeleteFavoritesByUser(_ context.Context, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, favs := range r.m.favorites {
		delete(favs, userID)
	}
	return nil
}

// ---- bookings ----

type fakeBookingRepo struct{ m *memStore }

func (r *fakeBookingRepo) filter(keep func(*entity.Booking) bool) []*entity.Booking {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *b
	r.m.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) FindByGuestID(_ context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	return page(r.filter(func(b *entity.Booking) bool { return b.GuestID == guestID }), limit, offset), nil
}

func (r *fakeBookingRepo) CountByGuestID(_ context.Context, guestID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return b.GuestID == guestID }))), nil
}

func (r *fakeBookingRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.PropertyID == propertyID }), nil
}

func (r *fakeBookingRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Booking, error) {
	return page(r.filter(func(*entity.Booking) bool { return true }), limit, offset), nil
}

func (r *fakeBookingRepo) CountAll(context.Context) (int64, error) {
	return int64(len(r.filter(func(*entity.Booking) bool { return true }))), nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (r *fakeBookingRepo) DeleteByGuestID(_ context.Context, guestID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, b := range r.m.bookings {
		if b.GuestID == guestID {
			delete(r.m.bookings, id)
		}
	}
	return nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return b.PropertyID == propertyID && b.Status.IsActive() &&
			b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
	}), nil
}

// ---- payments ----

type fakePaymentRepo struct{ m *memStore }

func (r *fakePaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.payments[p.BookingID]; ok {
		return repository.ErrDuplicate
	}
	cp := *p
	r.m.payments[p.BookingID] = &cp
	return nil
}

func (r *fakePaymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.payments[bookingID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ---- reviews ----

type fakeReviewRepo struct{ m *memStore }

func (r *fakeReviewRepo) filter(keep func(*entity.Review) bool) []*entity.Review {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Review
	for _, rv := range r.m.reviews {
		if keep(rv) {
			cp := *rv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func visible(rv *entity.Review) bool { return rv.Status != entity.ReviewStatusRejected }

func (r *fakeReviewRepo) Create(_ context.Context, rv *entity.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *rv
	r.m.reviews[rv.ID] = &cp
	return nil
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rv, ok := r.m.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *rv
	return &cp, nil
}

func (r *fakeReviewRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(visible), limit, offset), nil
}

func (r *fakeReviewRepo) CountAll(context.Context) (int64, error) {
	return int64(len(r.filter(visible))), nil
}

func (r *fakeReviewRepo) FindByPropertyID(_ context.Context, propertyID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(func(rv *entity.Review) bool { return rv.PropertyID == propertyID && visible(rv) }), limit, offset), nil
}

func (r *fakeReviewRepo) CountByPropertyID(_ context.Context, propertyID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv *entity.Review) bool { return rv.PropertyID == propertyID && visible(rv) }))), nil
}

func (r *fakeReviewRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID }), limit, offset), nil
}

func (r *fakeReviewRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv *entity.Review) bool { return rv.UserID == userID }))), nil
}

func (r *fakeReviewRepo) FindByUserAndProperty(_ context.Context, userID, propertyID uuid.UUID) (*entity.Review, error) {
	found := r.filter(func(rv *entity.Review) bool { return rv.UserID == userID && rv.PropertyID == propertyID })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *fakeReviewRepo) Update(_ context.Context, rv *entity.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *rv
	r.m.reviews[rv.ID] = &cp
	return nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.reviews, id)
	return nil
}

func (r *fakeReviewRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var properties []uuid.UUID
	for id, rv := range r.m.reviews {
		if rv.UserID == userID {
			properties = append(properties, rv.PropertyID)
			delete(r.m.reviews, id)
		}
	}
	return properties, nil
}

func (r *fakeReviewRepo) GetPropertyRatingStats(_ context.Context, propertyID uuid.UUID) (float64, int, error) {
	approved := r.filter(func(rv *entity.Review) bool {
		return rv.PropertyID == propertyID && rv.Status == entity.ReviewStatusApproved
	})
	if len(approved) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, rv := range approved {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(approved)), len(approved), nil
}

// ---- notifications ----

type fakeNotificationRepo struct{ m *memStore }

func (r *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *n
	r.m.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notifications[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepo) list(recipientID uuid.UUID, unreadOnly bool) []*entity.Notification {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.m.notifications {
		if n.RecipientID == recipientID && (!unreadOnly || !n.Read) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeNotificationRepo) FindByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	return page(r.list(recipientID, unreadOnly), limit, offset), nil
}

func (r *fakeNotificationRepo) CountByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool) (int64, error) {
	return int64(len(r.list(recipientID, unreadOnly))), nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, id, recipientID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, n := range r.m.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id, recipientID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return false, nil
	}
	delete(r.m.notifications, id)
	return true, nil
}

func (r *fakeNotificationRepo) DeleteByRecipient(_ context.Context, recipientID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, n := range r.m.notifications {
		if n.RecipientID == recipientID {
			delete(r.m.notifications, id)
		}
	}
	return nil
}

// ---- collaborators ----

type recordingPublisher struct {
	mu    sync.Mutex
	items []*entity.Notification
}

func (p *recordingPublisher) Publish(n *entity.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, n)
}

func (p *recordingPublisher) published() []*entity.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*entity.Notification(nil), p.items...)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	body []string
}

func (m *recordingMailer) Send(to, _ string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	m.body = append(m.body, body)
	return nil
}

type recordingPusher struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (p *recordingPusher) SendToUser(userID uuid.UUID, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	return nil
}

type fakeImageStore struct {
	mu        sync.Mutex
	failAfter int
	uploaded  []string
	destroyed []string
}

func (s *fakeImageStore) Upload(_ context.Context, _ io.Reader, filename string) (*storage.UploadedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && len(s.uploaded) >= s.failAfter {
		return nil, errors.New("upload failed")
	}
	publicID := "stay-nest/" + filename
	s.uploaded = append(s.uploaded, publicID)
	return &storage.UploadedImage{URL: "https://img.example/" + filename, PublicID: publicID}, nil
}

func (s *fakeImageStore) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

// ---- fixtures ----

func seedUser(m *memStore, name, email, password string) *entity.User {
	hash, err := utils.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	user := &entity.User{
		Base:               entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:               name,
		Email:              email,
		PasswordHash:       hash,
		Role:               entity.RoleUser,
		EmailNotifications: true,
		PushNotifications:  true,
		IsActive:           true,
	}
	m.users[user.ID] = user
	return user
}

func seedProperty(m *memStore, ownerID uuid.UUID, title string, maxGuests int) *entity.Property {
	now := time.Now()
	property := &entity.Property{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OwnerID:   ownerID,
		Title:     title,
		Location:  "Goa",
		Price:     entity.Price{Amount: 100, Currency: "INR", Period: entity.PricePeriodDaily},
		MaxGuests: maxGuests,
		Status:    entity.PropertyStatusAvailable,
	}
	m.properties[property.ID] = property
	return property
}

func testConfig() *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 24},
		OTP: utils.OTPConfig{ExpiryMinutes: 10, Length: 6},
	}
}
