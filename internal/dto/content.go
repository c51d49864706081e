package dto

// SavePostRequest creates or fully replaces a blog post or news article.
type SavePostRequest struct {
	Title     string  `json:"title" validate:"required,max=200"`
	Content   string  `json:"content" validate:"required"`
	Excerpt   *string `json:"excerpt" validate:"omitempty,max=500"`
	ImageURL  *string `json:"image_url" validate:"omitempty,url"`
	Published bool    `json:"published"`
}
