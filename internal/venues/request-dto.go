package venues

import "encoding/json"

type UpdateOccupantRequest struct {
	Occupant string `json:"occupant" validate:"max=100"`
}

// Count is a json.Number so "3" and 3 are both accepted; parsing is left to
// the session, which rejects anything that is not a whole number.
type UpdateCountRequest struct {
	Count json.Number `json:"count" validate:"required"`
}

type ClearSeatsRequest struct {
	Category string `json:"category" validate:"required,oneof=table bar"`
}

type EnqueueRequest struct {
	SpotID string   `json:"spot_id" validate:"required"`
	Songs  []string `json:"songs" validate:"required,min=1,max=2"`
}

type RenameRequest struct {
	SongName string `json:"song_name" validate:"required,max=200"`
}

// EntryRef addresses a queued request either by id or by seat and song.
// The id wins when both are given.
type EntryRef struct {
	EntryID  string `json:"entry_id" validate:"required_without=SpotID"`
	SpotID   string `json:"spot_id" validate:"required_without=EntryID"`
	SongName string `json:"song_name" validate:"required_with=SpotID"`
}

type PriceRequest struct {
	Price string `json:"price" validate:"required"`
}
