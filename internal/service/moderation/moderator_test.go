package moderation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonechat/internal/domain/moderation"
)

func newTestModerator() *Service {
	return New(DefaultRuleSet())
}

func review(t *testing.T, contentType, content string) moderation.Verdict {
	t.Helper()
	return newTestModerator().Review(context.Background(), moderation.ReviewInput{
		ContentType: contentType,
		Content:     content,
	})
}

func TestReviewBlocksPhoneNumbers(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain digits", "Llámame al 8095551234"},
		{"dashed", "call 809-555-1234 tonight"},
		{"spaced", "809 555 1234"},
		{"leet evasion", "c4ll m3 at 809-555-1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := review(t, "text", tt.content)
			assert.False(t, v.Allowed)
			assert.Equal(t, moderation.ReasonPhoneNumber, v.Reason)
		})
	}
}

func TestReviewAllowsShortDigitRuns(t *testing.T) {
	v := review(t, "text", "see you at 5 or maybe 630")
	assert.True(t, v.Allowed)
}

func TestReviewBlocksPersonalInfo(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"english address", "I live in the blue house"},
		{"spanish address", "vivo en el sector norte"},
		{"street word", "la avenida principal"},
		{"whatsapp", "add me on WhatsApp"},
		{"homoglyph evasion", "ll@m@me cuando puedas"},
		{"circled evasion", "ⓦⓗⓐⓣⓢⓐⓟⓟ me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := review(t, "text", tt.content)
			assert.False(t, v.Allowed)
			assert.Equal(t, moderation.ReasonPersonalInfo, v.Reason)
		})
	}
}

func TestReviewBlocksExternalLinks(t *testing.T) {
	tests := []string{
		"check out mysite.com",
		"go to example dot... example.org now",
		"sub.domain.net has everything",
	}

	for _, content := range tests {
		v := review(t, "text", content)
		assert.False(t, v.Allowed, "expected %q to be blocked", content)
		assert.Equal(t, moderation.ReasonExternalLink, v.Reason)
	}
}

func TestReviewExplicitFlagDoesNotBlock(t *testing.T) {
	v := review(t, "text", "esto es una mierda")
	assert.True(t, v.Allowed)
	assert.True(t, v.IsExplicit)

	v = review(t, "text", "what a lovely afternoon")
	assert.True(t, v.Allowed)
	assert.False(t, v.IsExplicit)
}

func TestReviewGifBypassesAllChecks(t *testing.T) {
	v := review(t, "gif", "call me at 8095551234 mysite.com vivo en la calle")
	assert.True(t, v.Allowed)
	assert.False(t, v.IsExplicit)
}

func TestReviewStickers(t *testing.T) {
	// Internally-hosted uploads are blocked; external and default stickers pass
	v := review(t, "sticker", "https://uploads.zonechat.app/stickers/abc123.png")
	assert.False(t, v.Allowed)
	assert.Equal(t, moderation.ReasonGalleryStickers, v.Reason)

	v = review(t, "sticker", "https://stickers.example-cdn.com/pack/7/wave.png")
	assert.True(t, v.Allowed)
}

func TestReviewAudioAllowed(t *testing.T) {
	v := review(t, "audio", "https://cdn.zonechat.app/audio/note.ogg")
	assert.True(t, v.Allowed)
}

func TestLoadRuleSetDefaults(t *testing.T) {
	rules, err := LoadRuleSet("")
	require.NoError(t, err)
	assert.Equal(t, "2024-09", rules.Version)
	assert.Equal(t, 7, rules.MinDigitRun)
	assert.NotEmpty(t, rules.BlockedPhrases)
	assert.NotEmpty(t, rules.ExplicitTerms)
}

func TestLoadRuleSetFromFile(t *testing.T) {
	custom := moderation.RuleSet{
		Version:        "test-1",
		BlockedPhrases: []string{"secret place"},
		Homoglyphs:     map[string]string{"0": "o"},
	}

	data, err := json.Marshal(custom)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rules, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", rules.Version)
	// MinDigitRun falls back to the default when the file omits it
	assert.Equal(t, 7, rules.MinDigitRun)

	v := New(rules).Review(context.Background(), moderation.ReviewInput{
		ContentType: "text",
		Content:     "meet at the secret place",
	})
	assert.False(t, v.Allowed)
}

func TestLoadRuleSetRequiresVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"blocked_phrases":["x"]}`), 0o644))

	_, err := LoadRuleSet(path)
	assert.Error(t, err)
}
