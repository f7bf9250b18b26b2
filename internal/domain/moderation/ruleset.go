package moderation

import "context"

// Reason is the coarse category returned when content is blocked. Callers
// map these to user-facing messages; the matched pattern itself is never
// disclosed.
type Reason string

const (
	ReasonPhoneNumber     Reason = "phone_number"
	ReasonPersonalInfo    Reason = "personal_info"
	ReasonExternalLink    Reason = "external_link"
	ReasonGalleryStickers Reason = "gallery_stickers_blocked"
)

// Verdict is the outcome of reviewing one piece of content. IsExplicit never
// blocks on its own; it only drives visibility filtering for minors.
type Verdict struct {
	Allowed    bool
	Reason     Reason
	IsExplicit bool
}

// ReviewInput carries one piece of outbound content through the pipeline
type ReviewInput struct {
	ContentType string
	Content     string
}

// Moderator classifies outbound content
type Moderator interface {
	Review(ctx context.Context, in ReviewInput) Verdict
}

// RuleSet is the versioned, data-driven configuration of the moderation
// pipeline. Phrase and term lists are stored in their raw form and
// normalized when the rule set is compiled, so the file can be audited
// against what users actually type.
type RuleSet struct {
	Version              string            `json:"version"`
	MinDigitRun          int               `json:"min_digit_run"`
	BlockedPhrases       []string          `json:"blocked_phrases"`
	ExplicitTerms        []string          `json:"explicit_terms"`
	Homoglyphs           map[string]string `json:"homoglyphs"`
	InternalStickerHosts []string          `json:"internal_sticker_hosts"`
}
