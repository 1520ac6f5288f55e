package songs

type SongResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Label  string `json:"label"`
}
