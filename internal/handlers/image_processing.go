package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/lekhan/internal/images"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/utils"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
)

// MaxUploadBytes limits the size of an uploaded document image
const MaxUploadBytes = images.MaxBytes

var errNoImage = errors.New("no file or url was sent")

type upload struct {
	Data     []byte
	MIMEType string
	Filename string
	Width    int
	Height   int
	MD5      string
}

// readUpload reads the multipart image from the "file" (or "files") field,
// or downloads the "url" form value when no file was sent
func (h *Handler) readUpload(r *http.Request) (*upload, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
	}
	if err != nil {
		url := r.FormValue("url")
		if url == "" {
			return nil, errNoImage
		}
		if !images.IsURL(url) {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		img, err := h.images.Fetch(r.Context(), url)
		if err != nil {
			return nil, err
		}
		return describe(&upload{Data: img.Data, MIMEType: img.MIMEType, Filename: url, MD5: img.MD5}), nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, images.ErrTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}

	mimeType, err := images.DetectMIMEType(data, header.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return describe(&upload{
		Data:     data,
		MIMEType: mimeType,
		Filename: header.Filename,
		MD5:      utils.CalculateDataMD5(data),
	}), nil
}

// describe fills in the image dimensions and logs the received image
func describe(u *upload) *upload {
	var err error
	u.Width, u.Height, err = getImageDimensions(u.Data)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "error", err, "type", u.MIMEType)
	}

	slog.Info("Image received", "filename", u.Filename, "md5", u.MD5, "type", u.MIMEType, "width", u.Width, "height", u.Height)
	return u
}

func getImageDimensions(data []byte) (int, int, error) {
	img, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return img.Width, img.Height, nil
}

// archivedUpload re-reads the image stored with an archived item
func archivedUpload(item models.VaultItem) (*upload, error) {
	data, err := vault.DecodeImage(item)
	if err != nil {
		return nil, fmt.Errorf("failed to decode archived image: %w", err)
	}
	return describe(&upload{
		Data:     data,
		MIMEType: item.SourceImage.MIMEType,
		Filename: item.ID,
		MD5:      utils.CalculateDataMD5(data),
	}), nil
}
