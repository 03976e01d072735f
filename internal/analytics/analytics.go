// Package analytics derives dashboard metrics from a ticket slice. Every function is a
// pure reduction; callers supply "now" so results are reproducible.
package analytics

import (
	"fmt"
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// Range is a trailing date window.
type Range string

const (
	Range7Days  Range = "7d"
	Range30Days Range = "30d"
	Range90Days Range = "90d"
	Range1Year  Range = "1y"
)

// DefaultRange is used when no range is requested.
const DefaultRange = Range30Days

const dayLayout = "2006-01-02"

// ParseRange validates a range key. An empty key yields DefaultRange.
func ParseRange(raw string) (Range, error) {
	switch r := Range(raw); r {
	case "":
		return DefaultRange, nil
	case Range7Days, Range30Days, Range90Days, Range1Year:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q", raw)
	}
}

// Days returns the window length in calendar days.
func (r Range) Days() int {
	switch r {
	case Range7Days:
		return 7
	case Range90Days:
		return 90
	case Range1Year:
		return 365
	default:
		return 30
	}
}

// Start returns the first instant inside the window ending at now. The window covers
// Days() UTC calendar days including today.
func (r Range) Start(now time.Time) time.Time {
	today := truncateDay(now)
	return today.AddDate(0, 0, -(r.Days() - 1))
}

// DailyPoint is one UTC calendar day of the time series.
type DailyPoint struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

// Metrics is the aggregate view of a ticket set.
type Metrics struct {
	Range              Range                         `json:"range"`
	Total              int                           `json:"total"`
	ByStatus           map[domain.TicketStatus]int   `json:"byStatus"`
	ByPriority         map[domain.TicketPriority]int `json:"byPriority"`
	AvgConfidence      float64                       `json:"avgConfidence"`
	EscalationRate     float64                       `json:"escalationRate"`
	ResolutionRate     float64                       `json:"resolutionRate"`
	AvgResponseHours   float64                       `json:"avgResponseHours"`
	AvgResolutionHours float64                       `json:"avgResolutionHours"`
	Daily              []DailyPoint                  `json:"daily"`
}

// Filter keeps tickets created inside the window ending at now.
func Filter(tickets []domain.Ticket, r Range, now time.Time) []domain.Ticket {
	start := r.Start(now)
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		created := t.CreatedAt.UTC()
		if created.Before(start) || created.After(now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Compute filters tickets to the window and reduces them to Metrics.
func Compute(tickets []domain.Ticket, r Range, now time.Time) Metrics {
	now = now.UTC()
	inRange := Filter(tickets, r, now)

	m := Metrics{
		Range:      r,
		Total:      len(inRange),
		ByStatus:   make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
		ByPriority: make(map[domain.TicketPriority]int, len(domain.TicketPriorities)),
		Daily:      dailySeries(inRange, r, now),
	}
	for _, s := range domain.TicketStatuses {
		m.ByStatus[s] = 0
	}
	for _, p := range domain.TicketPriorities {
		m.ByPriority[p] = 0
	}

	var confidence, responseHours, resolutionHours mean
	for _, t := range inRange {
		m.ByStatus[t.Status]++
		m.ByPriority[t.Priority]++
		if t.AIConfidence != nil {
			confidence.add(*t.AIConfidence)
		}
		if t.ResponseGeneratedAt != nil {
			responseHours.add(t.ResponseGeneratedAt.Sub(t.CreatedAt).Hours())
		}
		if t.ResolvedAt != nil {
			resolutionHours.add(t.ResolvedAt.Sub(t.CreatedAt).Hours())
		}
	}

	m.AvgConfidence = confidence.value()
	m.AvgResponseHours = responseHours.value()
	m.AvgResolutionHours = resolutionHours.value()
	m.EscalationRate = percent(m.ByStatus[domain.TicketStatusEscalated], m.Total)
	m.ResolutionRate = percent(m.ByStatus[domain.TicketStatusResolved], m.Total)
	return m
}

func dailySeries(tickets []domain.Ticket, r Range, now time.Time) []DailyPoint {
	start := r.Start(now)
	points := make([]DailyPoint, r.Days())
	index := make(map[string]int, len(points))
	for i := range points {
		day := start.AddDate(0, 0, i).Format(dayLayout)
		points[i].Date = day
		index[day] = i
	}
	for _, t := range tickets {
		if i, ok := index[t.CreatedAt.UTC().Format(dayLayout)]; ok {
			points[i].Created++
		}
		if t.ResolvedAt != nil {
			if i, ok := index[t.ResolvedAt.UTC().Format(dayLayout)]; ok {
				points[i].Resolved++
			}
		}
	}
	return points
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
