package session

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BoostAction is the label recorded on boosted history entries.
const BoostAction = "$ Boosted to top"

// History is the newest-first log of performances and boosts.
type History struct {
	entries []HistoryEntry
}

func NewHistory(entries []HistoryEntry) *History {
	owned := make([]HistoryEntry, len(entries))
	copy(owned, entries)
	return &History{entries: owned}
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) At(index int) (HistoryEntry, bool) {
	if index < 0 || index >= len(h.entries) {
		return HistoryEntry{}, false
	}
	return h.entries[index], true
}

// Prepend inserts entry as the newest record.
func (h *History) Prepend(entry HistoryEntry) {
	h.entries = append([]HistoryEntry{entry}, h.entries...)
}

// MarkCompleted flips the playing entry with the given id to completed.
func (h *History) MarkCompleted(id snowflake.ID) bool {
	for i := range h.entries {
		if h.entries[i].ID == id && h.entries[i].Status == StatusPlaying {
			h.entries[i].Status = StatusCompleted
			return true
		}
	}
	return false
}

func (h *History) UpdatePrice(index int, price decimal.Decimal) error {
	if index < 0 || index >= len(h.entries) {
		return fmt.Errorf("history index %d: %w", index, ErrNotFound)
	}
	if price.IsNegative() {
		return fmt.Errorf("price %s: %w", price, ErrInvalidArgument)
	}
	h.entries[index].Price = price
	return nil
}

func (h *History) SetAllPrices(price decimal.Decimal) error {
	if len(h.entries) == 0 {
		return fmt.Errorf("history is empty: %w", ErrNotFound)
	}
	if price.IsNegative() {
		return fmt.Errorf("price %s: %w", price, ErrInvalidArgument)
	}
	for i := range h.entries {
		h.entries[i].Price = price
	}
	return nil
}

func (h *History) Clear() {
	h.entries = make([]HistoryEntry, 0)
}

// ParsePrice reads a non-negative decimal amount such as "2" or "2.50".
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", raw, ErrInvalidArgument)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %q: %w", raw, ErrInvalidArgument)
	}
	return price, nil
}

// Summary totals a shift for the end-of-night report.
type Summary struct {
	RegularSongs int                        `json:"regularSongs"`
	BoostedSongs int                        `json:"boostedSongs"`
	TotalSongs   int                        `json:"totalSongs"`
	TotalRevenue decimal.Decimal            `json:"totalRevenue"`
	SeatTotals   map[string]decimal.Decimal `json:"seatTotals"`
}

// Summarize counts history entries by kind and sums their prices. Seat totals
// come from the registry so they reflect paid-and-cleared seats.
func (h *History) Summarize(seats *SeatRegistry) Summary {
	summary := Summary{
		TotalRevenue: decimal.Zero,
		SeatTotals:   make(map[string]decimal.Decimal),
	}
	for _, entry := range h.entries {
		if entry.Status == StatusBoosted {
			summary.BoostedSongs++
		} else {
			summary.RegularSongs++
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(entry.Price)
	}
	summary.TotalSongs = summary.RegularSongs + summary.BoostedSongs
	if seats != nil {
		for _, seat := range seats.List() {
			if seat.PerformedCount > 0 {
				summary.SeatTotals[seat.ID] = seats.SeatTotal(seat.ID)
			}
		}
	}
	return summary
}
