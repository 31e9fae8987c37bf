package rental

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusOngoing, false},
		{StatusPending, StatusReturned, false},
		{StatusConfirmed, StatusOngoing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusReturned, false},
		{StatusOngoing, StatusReturned, true},
		{StatusOngoing, StatusCancelled, true},
		{StatusOngoing, StatusPending, false},
		{StatusReturned, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusReturned, StatusReturned, true},
		{StatusPending, StatusPending, true},
		{Status("lost"), Status("lost"), false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusClasses(t *testing.T) {
	for _, s := range ActiveStatuses {
		require.True(t, s.IsActive())
		require.False(t, s.IsTerminal())
	}
	require.True(t, StatusReturned.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.False(t, StatusCancelled.IsActive())

	_, ok := ParseStatus("ongoing")
	require.True(t, ok)
	_, ok = ParseStatus("ONGOING")
	require.False(t, ok)
}
