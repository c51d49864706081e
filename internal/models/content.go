package models

import "time"

// PostKind separates blog posts from news articles.
type PostKind string

const (
	PostKindBlog PostKind = "blog"
	PostKindNews PostKind = "news"
)

// Valid reports whether k is a known kind.
func (k PostKind) Valid() bool {
	return k == PostKindBlog || k == PostKindNews
}

// ContentPost is a blog post or news article. Content is markdown.
type ContentPost struct {
	ID          string     `db:"id" json:"id"`
	Kind        PostKind   `db:"kind" json:"kind"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Content     string     `db:"content" json:"content"`
	Excerpt     *string    `db:"excerpt" json:"excerpt,omitempty"`
	ImageURL    *string    `db:"image_url" json:"image_url,omitempty"`
	AuthorID    string     `db:"author_id" json:"author_id"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// RenderedPost is a published post with its sanitised HTML body.
type RenderedPost struct {
	ContentPost
	HTML string `json:"html"`
}
