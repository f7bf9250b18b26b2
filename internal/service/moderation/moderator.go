// internal/service/moderation/moderator.go

package moderation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"zonechat/internal/domain/chat"
	"zonechat/internal/domain/moderation"
)

// Service implements the moderation.Moderator interface. Its job is to keep
// anything that could de-anonymize a participant, or move contact off the
// platform, out of zone chat; the explicit-language flag is a secondary,
// non-blocking classification used for age-based visibility.
type Service struct {
	rules          moderation.RuleSet
	normalizer     *Normalizer
	blockedPhrases []string
	explicitTerms  []string
	digitRun       *regexp.Regexp
	domainShape    *regexp.Regexp
}

// New compiles a rule set into a moderator. Phrase and term lists are folded
// through the same normalizer the pipeline uses, so rules match what users
// type rather than what auditors wrote.
func New(rules moderation.RuleSet) *Service {
	n := NewNormalizer(rules.Homoglyphs)

	blocked := make([]string, 0, len(rules.BlockedPhrases))
	for _, p := range rules.BlockedPhrases {
		if folded := n.Fold(p); folded != "" {
			blocked = append(blocked, folded)
		}
	}

	explicit := make([]string, 0, len(rules.ExplicitTerms))
	for _, t := range rules.ExplicitTerms {
		if folded := n.Fold(t); folded != "" {
			explicit = append(explicit, folded)
		}
	}

	return &Service{
		rules:          rules,
		normalizer:     n,
		blockedPhrases: blocked,
		explicitTerms:  explicit,
		digitRun:       regexp.MustCompile(fmt.Sprintf(`[0-9]{%d,}`, rules.MinDigitRun)),
		domainShape:    regexp.MustCompile(`(?:[a-z0-9]+\.)+[a-z]{2,}`),
	}
}

// RuleVersion returns the version of the compiled rule set
func (s *Service) RuleVersion() string {
	return s.rules.Version
}

// Review classifies one piece of outbound content. Stages short-circuit on
// the first blocking match; the explicit scan never blocks.
func (s *Service) Review(ctx context.Context, in moderation.ReviewInput) moderation.Verdict {
	switch chat.ContentType(in.ContentType) {
	case chat.TypeGif:
		// Trusted third-party media, no textual checks
		return moderation.Verdict{Allowed: true}

	case chat.TypeSticker:
		return s.reviewSticker(in.Content)

	case chat.TypeAudio:
		// Audio content is a media URL; duration and origin are validated
		// by the send pipeline, not by text matching
		return moderation.Verdict{Allowed: true}
	}

	return s.reviewText(in.Content)
}

// reviewSticker blocks only stickers that reference an internally-hosted
// upload; default and externally-hosted stickers pass.
func (s *Service) reviewSticker(content string) moderation.Verdict {
	lowered := strings.ToLower(content)
	for _, host := range s.rules.InternalStickerHosts {
		if strings.Contains(lowered, strings.ToLower(host)) {
			return moderation.Verdict{Allowed: false, Reason: moderation.ReasonGalleryStickers}
		}
	}
	return moderation.Verdict{Allowed: true}
}

func (s *Service) reviewText(content string) moderation.Verdict {
	// Digit runs are checked on the digits view, where homoglyph folding is
	// skipped so phone numbers survive their own obfuscation
	if s.digitRun.MatchString(s.normalizer.FoldDigits(content)) {
		return moderation.Verdict{Allowed: false, Reason: moderation.ReasonPhoneNumber}
	}

	folded := s.normalizer.Fold(content)

	for _, phrase := range s.blockedPhrases {
		if strings.Contains(folded, phrase) {
			return moderation.Verdict{Allowed: false, Reason: moderation.ReasonPersonalInfo}
		}
	}

	if s.domainShape.MatchString(s.normalizer.FoldDomains(content)) {
		return moderation.Verdict{Allowed: false, Reason: moderation.ReasonExternalLink}
	}

	verdict := moderation.Verdict{Allowed: true}
	for _, term := range s.explicitTerms {
		if strings.Contains(folded, term) {
			verdict.IsExplicit = true
			break
		}
	}

	return verdict
}
