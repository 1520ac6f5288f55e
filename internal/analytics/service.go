package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"karaoke/internal/session"
)

const topSongsLimit = 5

// SessionSource hands out live venue sessions
type SessionSource interface {
	Session(ctx context.Context, venueKey string) (*session.VenueSession, error)
}

// Service defines the reporting service interface
type Service interface {
	ShiftReport(ctx context.Context, venueKey string) (*ShiftReport, error)
	WriteHistoryCSV(ctx context.Context, venueKey string, w io.Writer) error
}

type service struct {
	sessions SessionSource
	now      func() time.Time
}

// NewService creates a new reporting service instance
func NewService(sessions SessionSource) Service {
	return &service{sessions: sessions, now: time.Now}
}

func (s *service) ShiftReport(ctx context.Context, venueKey string) (*ShiftReport, error) {
	vs, err := s.sessions.Session(ctx, venueKey)
	if err != nil {
		return nil, err
	}

	summary := vs.Summary()
	report := &ShiftReport{
		VenueKey:     venueKey,
		GeneratedAt:  s.now().UTC(),
		RegularSongs: summary.RegularSongs,
		BoostedSongs: summary.BoostedSongs,
		TotalSongs:   summary.TotalSongs,
		TotalRevenue: summary.TotalRevenue,
		UnpaidTotal:  vs.TotalRevenue(),
		QueueLength:  len(vs.Queue()),
		TopSongs:     topSongs(vs.History(), topSongsLimit),
		Seats:        []SeatLine{},
	}

	price := vs.UnitPrice()
	for _, seat := range vs.Seats() {
		if seat.PerformedCount == 0 {
			continue
		}
		report.Seats = append(report.Seats, SeatLine{
			SpotID:  seat.ID,
			Display: vs.SpotDisplay(seat.ID),
			Songs:   seat.PerformedCount,
			Total:   price.Mul(decimal.NewFromInt(int64(seat.PerformedCount))),
		})
	}
	return report, nil
}

// topSongs counts performances case-insensitively, keeping the first spelling
// seen. Boost records are not performances and are skipped.
func topSongs(history []session.HistoryEntry, limit int) []SongCount {
	counts := make(map[string]*SongCount)
	var order []string
	for _, entry := range history {
		if entry.Status == session.StatusBoosted {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(entry.SongName))
		if c, ok := counts[key]; ok {
			c.Count++
			continue
		}
		counts[key] = &SongCount{SongName: entry.SongName, Count: 1}
		order = append(order, key)
	}

	out := make([]SongCount, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].SongName) < strings.ToLower(out[j].SongName)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

var csvHeader = []string{
	"id", "spot_id", "spot_name", "occupant", "song", "ordered_time", "start_time", "status", "action", "price",
}

// WriteHistoryCSV writes the shift history oldest first
func (s *service) WriteHistoryCSV(ctx context.Context, venueKey string, w io.Writer) error {
	vs, err := s.sessions.Session(ctx, venueKey)
	if err != nil {
		return err
	}
	history := vs.History()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := len(history) - 1; i >= 0; i-- {
		e := history[i]
		record := []string{
			e.ID.String(),
			e.SpotID,
			e.SpotName,
			e.Occupant,
			e.SongName,
			e.OrderedTime,
			e.StartTime,
			string(e.Status),
			e.Action,
			e.Price.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
