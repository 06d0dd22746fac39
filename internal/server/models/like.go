package models

// Like links a user to a piece they liked. (UserID, PieceID) is unique.
type Like struct {
	UserID  int64 `json:"user_id"`
	PieceID int64 `json:"piece_id"`
}

// LikeDirection is the intent of a like toggle request.
type LikeDirection int

const (
	DirectionUnlike LikeDirection = 0
	DirectionLike   LikeDirection = 1
)

func (d LikeDirection) Valid() bool {
	return d == DirectionUnlike || d == DirectionLike
}

// LikeCount is the live number of likes of a piece.
type LikeCount struct {
	PieceID   int64 `json:"piece_id"`
	LikeCount int64 `json:"like_count"`
}
