package blogs

import "time"

// Tone selects the writing voice for a generation run.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneAcademic     Tone = "academic"
)

// ParseTone validates a tone value.
func ParseTone(s string) (Tone, error) {
	switch Tone(s) {
	case ToneProfessional, ToneCasual, ToneFriendly, ToneAcademic:
		return Tone(s), nil
	}
	return "", ErrInvalidInput
}

// Status tracks a blog through its editorial lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether the status is one of the known lifecycle values.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Blog is a generated article draft and its generation inputs.
type Blog struct {
	ID                   string
	UserID               string
	Topic                string
	Tone                 Tone
	TargetKeywords       []string
	AdditionalKeywords   []string
	BlogTitle            string
	BlogOutline          string
	BlogDraft            string
	Status               Status
	ReferenceDocumentIDs []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
