package vault

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/oklog/ulid/v2"
)

// NewID returns a ULID whose time component is createdAt, so ids sort by creation
func NewID(createdAt time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(createdAt), entropy).String()
}

// NewItem assembles an archive entry for a finished analysis
func NewItem(createdAt time.Time, result models.StructuredResult, image []byte, mimeType string, source, target models.Language) models.VaultItem {
	title := result.Title
	if title == "" {
		title = "Analysis " + createdAt.Format("15:04:05")
	}

	return models.VaultItem{
		ID:        NewID(createdAt),
		CreatedAt: createdAt.UnixMilli(),
		Title:     title,
		SourceImage: models.SourceImage{
			EncodedBytes: base64.StdEncoding.EncodeToString(image),
			MIMEType:     mimeType,
		},
		Result:         result,
		SourceLanguage: source.Name,
		TargetLanguage: target.Name,
		Status:         models.StatusNotVisited,
	}
}

// CreatedTime converts the stored millisecond timestamp
func CreatedTime(item models.VaultItem) time.Time {
	return time.UnixMilli(item.CreatedAt)
}

// DecodeImage returns the raw bytes of the archived source image
func DecodeImage(item models.VaultItem) ([]byte, error) {
	return base64.StdEncoding.DecodeString(item.SourceImage.EncodedBytes)
}
