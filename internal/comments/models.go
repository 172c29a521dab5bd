package comments

import "time"

// Comment belongs to one post. UserID is the subject id of the author.
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	UserID     int64     `json:"userId"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateRequest struct {
	PostID int64  `json:"postId"`
	Text   string `json:"text"`
}
