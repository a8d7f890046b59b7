package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	a, err := ParseClock("10:30")
	require.NoError(t, err)
	b, err := ParseClock("10:30:00")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "10:30", ReservationTime{StartAt: a}.Clock())

	_, err = ParseClock("nope")
	assert.Error(t, err)
}

func TestReservation_PastChecks(t *testing.T) {
	loc := time.UTC
	now := time.Date(2030, 5, 10, 12, 0, 0, 0, loc)
	noon, _ := ParseClock("12:00")
	later, _ := ParseClock("13:00")

	today := time.Date(2030, 5, 10, 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	cases := []struct {
		name      string
		date      time.Time
		start     time.Time
		past      bool
		beforeDay bool
	}{
		{"yesterday", yesterday, later, true, true},
		{"today now", today, noon, true, false},
		{"today later", today, later, false, false},
		{"tomorrow", tomorrow, noon, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Reservation{Date: tc.date, Time: ReservationTime{StartAt: tc.start}}
			assert.Equal(t, tc.past, r.IsPast(now))
			assert.Equal(t, tc.beforeDay, r.IsBeforeDay(now))
		})
	}
}

func TestLoginMember_IsAdmin(t *testing.T) {
	assert.True(t, LoginMember{Role: RoleAdmin}.IsAdmin())
	assert.False(t, LoginMember{Role: RoleUser}.IsAdmin())
	assert.False(t, LoginMember{}.IsAdmin())
}
