package session

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TablePrefix = "table_"
	BarPrefix   = "bar_"

	seatsPerCategory = 10
)

// InitializeSeats builds the fixed venue layout: ten tables and ten bar seats.
// It is the only place seats are created.
func InitializeSeats() map[string]Seat {
	seats := make(map[string]Seat, 2*seatsPerCategory)
	for i := 1; i <= seatsPerCategory; i++ {
		id := fmt.Sprintf("%s%d", TablePrefix, i)
		seats[id] = Seat{ID: id, Name: fmt.Sprintf("Table %d", i)}
	}
	for i := 1; i <= seatsPerCategory; i++ {
		id := fmt.Sprintf("%s%d", BarPrefix, i)
		seats[id] = Seat{ID: id, Name: fmt.Sprintf("Bar %d", i)}
	}
	return seats
}

// SeatRegistry owns occupant names and per-seat song counts.
type SeatRegistry struct {
	seats     map[string]Seat
	unitPrice decimal.Decimal
}

// NewSeatRegistry wraps a loaded seat map. An empty map gets the default layout.
func NewSeatRegistry(seats map[string]Seat, unitPrice decimal.Decimal) *SeatRegistry {
	if len(seats) == 0 {
		seats = InitializeSeats()
	}
	owned := make(map[string]Seat, len(seats))
	for id, seat := range seats {
		if seat.PerformedCount < 0 {
			seat.PerformedCount = 0
		}
		owned[id] = seat
	}
	return &SeatRegistry{seats: owned, unitPrice: unitPrice}
}

func (r *SeatRegistry) Get(seatID string) (Seat, error) {
	seat, ok := r.seats[seatID]
	if !ok {
		return Seat{}, fmt.Errorf("seat %q: %w", seatID, ErrNotFound)
	}
	return seat, nil
}

func (r *SeatRegistry) Has(seatID string) bool {
	_, ok := r.seats[seatID]
	return ok
}

func (r *SeatRegistry) SetOccupant(seatID, name string) error {
	seat, err := r.Get(seatID)
	if err != nil {
		return err
	}
	seat.Occupant = strings.TrimSpace(name)
	r.seats[seatID] = seat
	return nil
}

// SetPerformedCount overwrites the billed count. It is the manual correction
// path; promotions go through increment.
func (r *SeatRegistry) SetPerformedCount(seatID string, n int) error {
	seat, err := r.Get(seatID)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("performed count %d: %w", n, ErrInvalidArgument)
	}
	seat.PerformedCount = n
	r.seats[seatID] = seat
	return nil
}

// SetPerformedCountString parses raw form input before overwriting.
func (r *SeatRegistry) SetPerformedCountString(seatID, raw string) error {
	if _, err := r.Get(seatID); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("performed count %q: %w", raw, ErrInvalidArgument)
	}
	return r.SetPerformedCount(seatID, n)
}

func (r *SeatRegistry) MarkPaid(seatID string) error {
	seat, err := r.Get(seatID)
	if err != nil {
		return err
	}
	seat.Occupant = ""
	seat.PerformedCount = 0
	r.seats[seatID] = seat
	return nil
}

// ClearCategory resets every seat whose id starts with prefix and reports how
// many seats matched.
func (r *SeatRegistry) ClearCategory(prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("empty seat category: %w", ErrInvalidArgument)
	}
	cleared := 0
	for id, seat := range r.seats {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		seat.Occupant = ""
		seat.PerformedCount = 0
		r.seats[id] = seat
		cleared++
	}
	return cleared, nil
}

func (r *SeatRegistry) ResetAll() {
	for id, seat := range r.seats {
		seat.Occupant = ""
		seat.PerformedCount = 0
		r.seats[id] = seat
	}
}

func (r *SeatRegistry) increment(seatID string) {
	seat, ok := r.seats[seatID]
	if !ok {
		return
	}
	seat.PerformedCount++
	r.seats[seatID] = seat
}

func (r *SeatRegistry) TotalSongs() int {
	total := 0
	for _, seat := range r.seats {
		total += seat.PerformedCount
	}
	return total
}

func (r *SeatRegistry) TotalRevenue() decimal.Decimal {
	return r.unitPrice.Mul(decimal.NewFromInt(int64(r.TotalSongs())))
}

// SeatTotal is the amount owed by one seat.
func (r *SeatRegistry) SeatTotal(seatID string) decimal.Decimal {
	seat, ok := r.seats[seatID]
	if !ok {
		return decimal.Zero
	}
	return r.unitPrice.Mul(decimal.NewFromInt(int64(seat.PerformedCount)))
}

// SpotDisplay renders "Table 3 (by: Ann)", "Table 3", or the raw id for seats the
// registry does not know.
func (r *SeatRegistry) SpotDisplay(seatID string) string {
	seat, ok := r.seats[seatID]
	if !ok {
		return seatID
	}
	if seat.Occupant != "" {
		return fmt.Sprintf("%s (by: %s)", seat.Name, seat.Occupant)
	}
	return seat.Name
}

// List returns tables then bar seats, each in numeric order.
func (r *SeatRegistry) List() []Seat {
	out := make([]Seat, 0, len(r.seats))
	for _, seat := range r.seats {
		out = append(out, seat)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, ni := seatOrder(out[i].ID)
		cj, nj := seatOrder(out[j].ID)
		if ci != cj {
			return ci < cj
		}
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *SeatRegistry) Map() map[string]Seat {
	out := make(map[string]Seat, len(r.seats))
	for id, seat := range r.seats {
		out[id] = seat
	}
	return out
}

func seatOrder(id string) (category int, number int) {
	switch {
	case strings.HasPrefix(id, TablePrefix):
		category = 0
		number, _ = strconv.Atoi(strings.TrimPrefix(id, TablePrefix))
	case strings.HasPrefix(id, BarPrefix):
		category = 1
		number, _ = strconv.Atoi(strings.TrimPrefix(id, BarPrefix))
	default:
		category = 2
	}
	return category, number
}
