package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDetectMIMEType(t *testing.T) {
	data := pngBytes(t)

	tests := []struct {
		name     string
		data     []byte
		declared string
		want     string
		wantErr  bool
	}{
		{"declared image wins", data, "image/jpeg", "image/jpeg", false},
		{"parameters stripped", data, "image/png; charset=binary", "image/png", false},
		{"octet stream sniffed", data, "application/octet-stream", "image/png", false},
		{"empty sniffed", data, "", "image/png", false},
		{"text rejected", []byte("hello there"), "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectMIMEType(tt.data, tt.declared)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, pngBytes(t), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := NewFetcher().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %q", img.MIMEType)
	}
	if len(img.MD5) != 32 {
		t.Errorf("Expected hex md5, got %q", img.MD5)
	}
}

func TestFetch(t *testing.T) {
	data := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scan":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(data)
		case "/big":
			_, _ = w.Write(make([]byte, MaxBytes+1))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewFetcher()
	ctx := context.Background()

	img, err := f.Load(ctx, server.URL+"/scan")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !bytes.Equal(img.Data, data) || img.MIMEType != "image/png" {
		t.Errorf("Expected sniffed png payload, got %q with %d bytes", img.MIMEType, len(img.Data))
	}

	if _, err := f.Fetch(ctx, server.URL+"/missing"); err == nil {
		t.Error("Expected error for 404")
	}
	if _, err := f.Fetch(ctx, server.URL+"/big"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://example.org/a.jpg") || IsURL("./a.jpg") {
		t.Error("Expected only http(s) sources to be URLs")
	}
}
