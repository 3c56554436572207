package model

import (
	"time"
)

const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
)

// Post is a single text or media post. Posts are never edited after creation.
type Post struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Caption   string    `db:"caption" json:"caption"`
	URL       string    `db:"url" json:"url,omitempty"`
	FileType  string    `db:"file_type" json:"file_type,omitempty"` // "image", "video" or empty for text posts
	FileName  string    `db:"file_name" json:"file_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsMedia reports whether the post carries an uploaded attachment.
func (p *Post) IsMedia() bool {
	return p.FileType != ""
}

// CreatePostRequest is the body of a text-only create
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required_without=Caption,max=300"`
	Content string `json:"content" validate:"max=10000"`
	Caption string `json:"caption" validate:"max=2200"`
}

// UploadPostRequest holds the non-file fields of a multipart upload
type UploadPostRequest struct {
	Caption string `json:"caption" validate:"max=2200"`
}

// ListPostsResponse wraps a feed page
type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
}
