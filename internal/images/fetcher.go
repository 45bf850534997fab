package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/utils"
)

// MaxBytes limits the size of a document image
const MaxBytes = 10 * 1024 * 1024

var ErrTooLarge = errors.New("image too large (max 10MB)")

// Image is a document scan ready for analysis
type Image struct {
	Data     []byte
	MIMEType string
	MD5      string
}

// Fetcher loads document images from disk or over HTTP
type Fetcher struct {
	HTTPClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsURL reports whether src should be downloaded rather than read from disk
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Load reads src from disk, or downloads it when it is an http(s) URL
func (f *Fetcher) Load(ctx context.Context, src string) (*Image, error) {
	if IsURL(src) {
		return f.Fetch(ctx, src)
	}

	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, err
	}
	return newImage(data, "")
}

// Fetch downloads an image. The server's Content-Type is trusted when it names an image.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	img, err := newImage(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	slog.Info("Downloaded image", "url", url, "bytes", len(data), "type", img.MIMEType, "md5", img.MD5)
	return img, nil
}

// DetectMIMEType returns declared when it names an image, otherwise sniffs data.
// Anything that is not an image is rejected.
func DetectMIMEType(data []byte, declared string) (string, error) {
	mimeType := strings.TrimSpace(strings.Split(declared, ";")[0])
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("unsupported file type %q: an image is required", mimeType)
	}
	return mimeType, nil
}

func newImage(data []byte, declared string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	mimeType, err := DetectMIMEType(data, declared)
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, MIMEType: mimeType, MD5: utils.CalculateDataMD5(data)}, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
