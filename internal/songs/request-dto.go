package songs

type CreateSongRequest struct {
	Title  string `json:"title" binding:"required,min=1,max=200"`
	Artist string `json:"artist" binding:"max=200"`
}

type SongSearchQuery struct {
	Query string `form:"q" binding:"max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
