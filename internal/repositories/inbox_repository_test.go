package repositories

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"afribase-messaging/internal/models"
)

func TestPreviewImageMessage(t *testing.T) {
	got := preview(models.Message{Kind: models.KindImage, ObjectRef: "https://cdn.example.com/x.png"})
	assert.Equal(t, "image", got)
}

func TestPreviewShortTextUnchanged(t *testing.T) {
	got := preview(models.Message{Kind: models.KindText, Body: "hello"})
	assert.Equal(t, "hello", got)
}

func TestPreviewTruncatesLongText(t *testing.T) {
	body := strings.Repeat("a", previewLimit+20)
	got := preview(models.Message{Kind: models.KindText, Body: body})
	assert.Len(t, got, previewLimit)
}

func TestPreviewNeverSplitsARune(t *testing.T) {
	// Three bytes per rune; the byte limit lands mid-rune.
	body := strings.Repeat("→", 50)
	got := preview(models.Message{Kind: models.KindText, Body: body})

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("→", 46), got)
	assert.LessOrEqual(t, len(got), previewLimit)
}
