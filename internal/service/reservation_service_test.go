package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/queue"
	"github.com/iliyamo/roomescape/internal/repository"
)

var fixedNow = time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func clock(s string) time.Time {
	t, err := model.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return t
}

func day(offset int) time.Time {
	return time.Date(2030, 5, 10+offset, 0, 0, 0, 0, time.UTC)
}

type reservationFixture struct {
	reservations *MockReservationRepository
	times        *MockTimeRepository
	themes       *MockThemeRepository
	events       *MockEventPublisher
	svc          *ReservationService
}

func newReservationFixture() *reservationFixture {
	f := &reservationFixture{
		reservations: new(MockReservationRepository),
		times:        new(MockTimeRepository),
		themes:       new(MockThemeRepository),
		events:       new(MockEventPublisher),
	}
	f.svc = NewReservationService(f.reservations, f.times, f.themes, f.events, fixedClock, time.UTC)
	return f
}

func (f *reservationFixture) slot(id int64, start string) {
	f.times.On("FindByID", mock.Anything, id).Return(model.ReservationTime{ID: id, StartAt: clock(start)}, nil)
}

func (f *reservationFixture) theme(id int64) {
	f.themes.On("FindByID", mock.Anything, id).Return(model.Theme{ID: id, Name: "Level 2"}, nil)
}

func TestReservationService_Create_Success(t *testing.T) {
	f := newReservationFixture()
	f.slot(1, "10:00")
	f.theme(2)
	f.reservations.On("Exists", mock.Anything, day(1), int64(1), int64(2)).Return(false, nil)
	f.reservations.On("Create", mock.Anything, mock.AnythingOfType("*model.Reservation")).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.ReservationEvent) bool {
		return ev.Type == queue.EventReservationCreated && ev.ReservationID == 100 && ev.Date == "2030-05-11"
	})).Return(nil)

	r, err := f.svc.Create(context.Background(), CreateReservation{
		Name: "brown", Date: day(1), TimeID: 1, ThemeID: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), r.ID)
	assert.Equal(t, "brown", r.Name)
	assert.Equal(t, "10:00", r.Time.Clock())
	assert.Equal(t, "Level 2", r.Theme.Name)
	f.reservations.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestReservationService_Create_PastDate(t *testing.T) {
	f := newReservationFixture()
	f.slot(1, "23:00")
	f.theme(2)

	_, err := f.svc.Create(context.Background(), CreateReservation{
		Name: "brown", Date: day(-1), TimeID: 1, ThemeID: 2,
	})

	assert.ErrorIs(t, err, ErrPastDate)
	f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReservationService_Create_TodayPastTime(t *testing.T) {
	for _, start := range []string{"09:00", "12:00"} {
		t.Run(start, func(t *testing.T) {
			f := newReservationFixture()
			f.slot(1, start)
			f.theme(2)

			_, err := f.svc.Create(context.Background(), CreateReservation{
				Name: "brown", Date: day(0), TimeID: 1, ThemeID: 2,
			})
			assert.ErrorIs(t, err, ErrPastTime)
		})
	}
}

func TestReservationService_Create_TodayLaterTime(t *testing.T) {
	f := newReservationFixture()
	f.slot(1, "12:01")
	f.theme(2)
	f.reservations.On("Exists", mock.Anything, day(0), int64(1), int64(2)).Return(false, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), CreateReservation{
		Name: "brown", Date: day(0), TimeID: 1, ThemeID: 2,
	})
	assert.NoError(t, err)
}

func TestReservationService_Create_Duplicate(t *testing.T) {
	t.Run("pre-check", func(t *testing.T) {
		f := newReservationFixture()
		f.slot(1, "10:00")
		f.theme(2)
		f.reservations.On("Exists", mock.Anything, day(1), int64(1), int64(2)).Return(true, nil)

		_, err := f.svc.Create(context.Background(), CreateReservation{
			Name: "brown", Date: day(1), TimeID: 1, ThemeID: 2,
		})
		assert.ErrorIs(t, err, ErrDuplicateReservation)
	})
	t.Run("unique index", func(t *testing.T) {
		f := newReservationFixture()
		f.slot(1, "10:00")
		f.theme(2)
		f.reservations.On("Exists", mock.Anything, day(1), int64(1), int64(2)).Return(false, nil)
		f.reservations.On("Create", mock.Anything, mock.Anything).
			Return(fmt.Errorf("insert reservation: %w", repository.ErrDuplicate))

		_, err := f.svc.Create(context.Background(), CreateReservation{
			Name: "brown", Date: day(1), TimeID: 1, ThemeID: 2,
		})
		assert.ErrorIs(t, err, ErrDuplicateReservation)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestReservationService_Create_UnknownReferences(t *testing.T) {
	f := newReservationFixture()
	f.times.On("FindByID", mock.Anything, int64(9)).Return(model.ReservationTime{}, repository.ErrNotFound)
	_, err := f.svc.Create(context.Background(), CreateReservation{Name: "a", Date: day(1), TimeID: 9, ThemeID: 2})
	assert.ErrorIs(t, err, ErrTimeNotFound)

	f = newReservationFixture()
	f.slot(1, "10:00")
	f.themes.On("FindByID", mock.Anything, int64(9)).Return(model.Theme{}, repository.ErrNotFound)
	_, err = f.svc.Create(context.Background(), CreateReservation{Name: "a", Date: day(1), TimeID: 1, ThemeID: 9})
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestReservationService_Create_NameFromMember(t *testing.T) {
	f := newReservationFixture()
	f.slot(1, "10:00")
	f.theme(2)
	f.reservations.On("Exists", mock.Anything, day(1), int64(1), int64(2)).Return(false, nil)
	f.reservations.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Reservation) bool {
		return r.Name == "admin"
	})).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.ReservationEvent) bool {
		return ev.MemberID == 7
	})).Return(nil)

	r, err := f.svc.Create(context.Background(), CreateReservation{
		Name: "  ", Date: day(1), TimeID: 1, ThemeID: 2,
		Member: &model.LoginMember{ID: 7, Name: "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", r.Name)
}

func TestReservationService_Create_NameRequired(t *testing.T) {
	f := newReservationFixture()
	_, err := f.svc.Create(context.Background(), CreateReservation{Date: day(1), TimeID: 1, ThemeID: 2})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestReservationService_Create_PublishFailureIgnored(t *testing.T) {
	f := newReservationFixture()
	f.slot(1, "10:00")
	f.theme(2)
	f.reservations.On("Exists", mock.Anything, day(1), int64(1), int64(2)).Return(false, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := f.svc.Create(context.Background(), CreateReservation{
		Name: "brown", Date: day(1), TimeID: 1, ThemeID: 2,
	})
	assert.NoError(t, err)
}

func TestReservationService_Delete(t *testing.T) {
	f := newReservationFixture()
	existing := model.Reservation{ID: 5, Name: "brown", Date: day(1),
		Time: model.ReservationTime{ID: 1, StartAt: clock("10:00")}, Theme: model.Theme{ID: 2}}
	f.reservations.On("FindByID", mock.Anything, int64(5)).Return(existing, nil)
	f.reservations.On("Delete", mock.Anything, int64(5)).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.ReservationEvent) bool {
		return ev.Type == queue.EventReservationCanceled && ev.ReservationID == 5
	})).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), 5, nil))
	f.events.AssertExpectations(t)
}

func TestReservationService_DeleteMissing(t *testing.T) {
	f := newReservationFixture()
	f.reservations.On("FindByID", mock.Anything, int64(5)).Return(model.Reservation{}, repository.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), 5, nil), ErrReservationNotFound)
	f.reservations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
