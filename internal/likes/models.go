package likes

import "time"

// Like records that UserID liked PostID. A user likes a post at most once.
type Like struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type likeRequest struct {
	PostID int64 `json:"postId"`
}

// Status is the like summary of one post as seen by the caller.
type Status struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}
