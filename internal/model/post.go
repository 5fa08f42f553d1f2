package model

import "time"

// MaxPostTitleLen bounds post titles, matching the posts table constraint.
const MaxPostTitleLen = 255

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
