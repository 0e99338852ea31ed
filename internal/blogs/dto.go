package blogs

import "time"

// BlogResponse is the outward-facing representation of a blog.
type BlogResponse struct {
	BlogID             string    `json:"blogId"`
	Topic              string    `json:"topic"`
	Tone               string    `json:"tone"`
	TargetKeywords     []string  `json:"targetKeywords"`
	AdditionalKeywords []string  `json:"additionalKeywords"`
	BlogTitle          string    `json:"blogTitle"`
	BlogOutline        string    `json:"blogOutline"`
	BlogDraft          string    `json:"blogDraft"`
	Status             string    `json:"status"`
	DocumentIDs        []string  `json:"documentIds"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toResponse(blog Blog) BlogResponse {
	target := blog.TargetKeywords
	if target == nil {
		target = []string{}
	}
	additional := blog.AdditionalKeywords
	if additional == nil {
		additional = []string{}
	}
	docIDs := blog.ReferenceDocumentIDs
	if docIDs == nil {
		docIDs = []string{}
	}
	return BlogResponse{
		BlogID:             blog.ID,
		Topic:              blog.Topic,
		Tone:               string(blog.Tone),
		TargetKeywords:     target,
		AdditionalKeywords: additional,
		BlogTitle:          blog.BlogTitle,
		BlogOutline:        blog.BlogOutline,
		BlogDraft:          blog.BlogDraft,
		Status:             string(blog.Status),
		DocumentIDs:        docIDs,
		CreatedAt:          blog.CreatedAt,
		UpdatedAt:          blog.UpdatedAt,
	}
}
