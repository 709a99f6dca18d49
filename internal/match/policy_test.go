package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestSelectRefundPercent(t *testing.T) {
	rules := []RefundRule{
		{HoursBefore: 72, Percent: 100},
		{HoursBefore: 48, Percent: 80},
		{HoursBefore: 24, Percent: 50},
		{HoursBefore: 0, Percent: 0},
	}

	cases := []struct {
		name           string
		hoursRemaining float64
		want           int
	}{
		{"well before", 100, 100},
		{"exactly at threshold", 72, 100},
		{"between rules", 60, 80},
		{"just under a threshold", 47.9, 50},
		{"last hours", 3, 0},
		{"after start", -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SelectRefundPercent(rules, tc.hoursRemaining))
		})
	}
}

func TestSelectRefundPercentNoRules(t *testing.T) {
	require.Zero(t, SelectRefundPercent(nil, 100))
}

func TestRefundAmountFloors(t *testing.T) {
	require.Equal(t, 330, RefundAmount(1000, 33))
	require.Equal(t, 333, RefundAmount(1010, 33))
	require.Equal(t, 0, RefundAmount(1000, 0))
	require.Equal(t, 0, RefundAmount(0, 100))
	require.Equal(t, 1000, RefundAmount(1000, 100))
}

func TestEntryCost(t *testing.T) {
	m := &Match{
		Category:     CategoryOpenHockey,
		EntryPoints:  10000,
		RentalPoints: 3000,
		GoalieFree:   true,
	}

	require.Equal(t, 10000, m.EntryCost(PositionForward, false))
	require.Equal(t, 13000, m.EntryCost(PositionForward, true))
	// Goalie-free waives the entry fee but not the rental.
	require.Equal(t, 0, m.EntryCost(PositionGoalie, false))
	require.Equal(t, 3000, m.EntryCost(PositionGoalie, true))

	// Team matches carry no fees at all.
	m.Category = CategoryTeamMatch
	require.Equal(t, 0, m.EntryCost(PositionForward, true))
}

func TestGuestGateOpensAtDefault(t *testing.T) {
	m := &Match{StartTime: mustTime(t, "2026-03-10T19:00:00Z")}
	require.Equal(t, mustTime(t, "2026-03-09T19:00:00Z"), m.GuestGateOpensAt())

	hours := 6
	m.GuestOpenHoursBefore = &hours
	require.Equal(t, mustTime(t, "2026-03-10T13:00:00Z"), m.GuestGateOpensAt())
}
