package posts

import "time"

// Post is a published post. Author is the subject id of the creator and never changes.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Author     int64     `json:"author"`
	AuthorName string    `json:"authorName,omitempty"`
	Topics     []string  `json:"topics"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Topics []string `json:"topics"`
}
