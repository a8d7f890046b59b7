package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/queue"
	"github.com/iliyamo/roomescape/internal/utils"
)

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *model.Member) error {
	args := m.Called(ctx, member)
	if args.Error(0) == nil {
		member.ID = 1
	}
	return args.Error(0)
}

func (m *MockMemberRepository) FindByEmail(ctx context.Context, email string) (model.Member, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id int64) (model.Member, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Member), args.Error(1)
}

// MockTimeRepository is a mock implementation of TimeRepository
type MockTimeRepository struct {
	mock.Mock
}

func (m *MockTimeRepository) List(ctx context.Context) ([]model.ReservationTime, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReservationTime), args.Error(1)
}

func (m *MockTimeRepository) FindByID(ctx context.Context, id int64) (model.ReservationTime, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.ReservationTime), args.Error(1)
}

func (m *MockTimeRepository) Create(ctx context.Context, startAt time.Time) (model.ReservationTime, error) {
	args := m.Called(ctx, startAt)
	return args.Get(0).(model.ReservationTime), args.Error(1)
}

func (m *MockTimeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTimeRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTimeRepository) ListAvailable(ctx context.Context, date time.Time, themeID int64) ([]model.AvailableTime, error) {
	args := m.Called(ctx, date, themeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AvailableTime), args.Error(1)
}

// MockThemeRepository is a mock implementation of ThemeRepository
type MockThemeRepository struct {
	mock.Mock
}

func (m *MockThemeRepository) List(ctx context.Context) ([]model.Theme, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Theme), args.Error(1)
}

func (m *MockThemeRepository) FindByID(ctx context.Context, id int64) (model.Theme, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Theme), args.Error(1)
}

func (m *MockThemeRepository) Create(ctx context.Context, th *model.Theme) error {
	args := m.Called(ctx, th)
	if args.Error(0) == nil {
		th.ID = 1
	}
	return args.Error(0)
}

func (m *MockThemeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockThemeRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockThemeRepository) Popular(ctx context.Context, from, to time.Time, limit int) ([]model.PopularTheme, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PopularTheme), args.Error(1)
}

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) List(ctx context.Context) ([]model.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id int64) (model.Reservation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Exists(ctx context.Context, date time.Time, timeID, themeID int64) (bool, error) {
	args := m.Called(ctx, date, timeID, themeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) Create(ctx context.Context, r *model.Reservation) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = 100
	}
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) CreateToken(memberID int64) (utils.IssuedToken, error) {
	args := m.Called(memberID)
	return args.Get(0).(utils.IssuedToken), args.Error(1)
}

func (m *MockTokenIssuer) ParseSubject(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}
