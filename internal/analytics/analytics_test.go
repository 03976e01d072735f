package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
)

var now = time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64     { return &f }

func TestComputeEmptyIsAllZero(t *testing.T) {
	m := Compute(nil, Range7Days, now)

	assert.Zero(t, m.Total)
	for _, v := range []float64{m.AvgConfidence, m.EscalationRate, m.ResolutionRate, m.AvgResponseHours, m.AvgResolutionHours} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		assert.Zero(t, v)
	}
	require.Len(t, m.Daily, 7)
	for _, p := range m.Daily {
		assert.Zero(t, p.Created)
		assert.Zero(t, p.Resolved)
	}
	assert.Equal(t, 0, m.ByStatus[domain.TicketStatusNew])
	assert.Len(t, m.ByStatus, len(domain.TicketStatuses))
}

func TestComputeAggregates(t *testing.T) {
	created := now.Add(-48 * time.Hour)
	tickets := []domain.Ticket{
		{
			Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh, CreatedAt: created,
			AIConfidence: ptrFloat(0.8), ResponseGeneratedAt: ptrTime(created.Add(2 * time.Hour)),
			ResolvedAt: ptrTime(created.Add(10 * time.Hour)),
		},
		{
			Status: domain.TicketStatusEscalated, Priority: domain.TicketPriorityHigh, CreatedAt: created,
			AIConfidence: ptrFloat(0.4), EscalatedAt: ptrTime(created.Add(time.Hour)),
		},
		{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityLow, CreatedAt: now.Add(-time.Hour)},
		{Status: domain.TicketStatusNew, Priority: domain.TicketPriorityLow, CreatedAt: now.AddDate(0, 0, -20)},
	}

	m := Compute(tickets, Range7Days, now)

	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 2, m.ByPriority[domain.TicketPriorityHigh])
	assert.Equal(t, 1, m.ByStatus[domain.TicketStatusNew])
	assert.InDelta(t, 0.6, m.AvgConfidence, 1e-9)
	assert.InDelta(t, 100.0/3, m.EscalationRate, 1e-9)
	assert.InDelta(t, 100.0/3, m.ResolutionRate, 1e-9)
	assert.InDelta(t, 2.0, m.AvgResponseHours, 1e-9)
	assert.InDelta(t, 10.0, m.AvgResolutionHours, 1e-9)

	byDate := map[string]DailyPoint{}
	for _, p := range m.Daily {
		byDate[p.Date] = p
	}
	assert.Equal(t, 2, byDate["2026-03-13"].Created)
	assert.Equal(t, 1, byDate["2026-03-14"].Resolved)
	assert.Equal(t, 1, byDate["2026-03-15"].Created)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, Range30Days, r)

	r, err = ParseRange("1y")
	require.NoError(t, err)
	assert.Equal(t, 365, r.Days())

	_, err = ParseRange("2w")
	require.Error(t, err)
}

func TestRangeStartIsUTCMidnight(t *testing.T) {
	start := Range7Days.Start(now)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), start)
}
