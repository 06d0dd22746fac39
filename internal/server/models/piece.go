package models

import "time"

// MaxTitleLength bounds Piece.Title; mirrored by the pieces.title column.
const MaxTitleLength = 200

type Piece struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	NumOfLikes  int64     `json:"num_of_likes"`
	CreatedAt   time.Time `json:"created_at"`
}

// PieceUpdate is a partial update; nil fields keep their value.
type PieceUpdate struct {
	Title       *string
	Description *string
}

func (u PieceUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}
