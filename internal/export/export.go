package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

const (
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

// Bundle is the YAML export document
type Bundle struct {
	Owner      models.Owner       `yaml:"owner"`
	ExportedAt string             `yaml:"exportedat"`
	Items      []models.VaultItem `yaml:"items"`
}

// Row is the flat parquet layout of one vault item.
// The structured result is kept as embedded JSON.
type Row struct {
	ID             string `parquet:"id"`
	OwnerID        string `parquet:"owner_id"`
	CreatedAt      int64  `parquet:"created_at"`
	Title          string `parquet:"title"`
	SourceLanguage string `parquet:"source_language"`
	TargetLanguage string `parquet:"target_language"`
	Status         string `parquet:"status"`
	ImageMIMEType  string `parquet:"image_mime_type"`
	ImageData      string `parquet:"image_data"`
	Result         string `parquet:"result"`
}

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", filepath.Ext(path))
	}
}

// WriteYAML writes the owner's items as a YAML bundle
func WriteYAML(w io.Writer, owner models.Owner, items []models.VaultItem) error {
	bundle := Bundle{
		Owner:      owner,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Items:      items,
	}
	data, err := yaml.Marshal(&bundle)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return nil
}

// ReadYAML reads the items of a YAML bundle
func ReadYAML(r io.Reader) ([]models.VaultItem, error) {
	var bundle Bundle
	if err := yaml.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return bundle.Items, nil
}

// WriteParquet writes items to a parquet file at path
func WriteParquet(path string, items []models.VaultItem) error {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		result, err := json.Marshal(item.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result for %s: %w", item.ID, err)
		}
		rows = append(rows, Row{
			ID:             item.ID,
			OwnerID:        item.OwnerID,
			CreatedAt:      item.CreatedAt,
			Title:          item.Title,
			SourceLanguage: item.SourceLanguage,
			TargetLanguage: item.TargetLanguage,
			Status:         string(item.Status.Normalize()),
			ImageMIMEType:  item.SourceImage.MIMEType,
			ImageData:      item.SourceImage.EncodedBytes,
			Result:         string(result),
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads items from a parquet file written by WriteParquet
func ReadParquet(path string) ([]models.VaultItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows())

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var items []models.VaultItem
	rows := make([]Row, 64)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			item, convErr := fromRow(row)
			if convErr != nil {
				return nil, convErr
			}
			items = append(items, item)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return items, nil
}

func fromRow(row Row) (models.VaultItem, error) {
	var result models.StructuredResult
	if row.Result != "" {
		if err := json.Unmarshal([]byte(row.Result), &result); err != nil {
			return models.VaultItem{}, fmt.Errorf("failed to decode result for %s: %w", row.ID, err)
		}
	}
	return models.VaultItem{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		CreatedAt:      row.CreatedAt,
		Title:          row.Title,
		SourceLanguage: row.SourceLanguage,
		TargetLanguage: row.TargetLanguage,
		Status:         models.Status(row.Status).Normalize(),
		SourceImage: models.SourceImage{
			EncodedBytes: row.ImageData,
			MIMEType:     row.ImageMIMEType,
		},
		Result: result,
	}, nil
}

// ReadFile imports items from a YAML or parquet file, chosen by extension
func ReadFile(path string) ([]models.VaultItem, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		return ReadParquet(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()
	return ReadYAML(file)
}

// WriteFile exports items to path in the given format
func WriteFile(path, format string, owner models.Owner, items []models.VaultItem) error {
	switch format {
	case FormatParquet:
		return WriteParquet(path, items)
	case FormatYAML:
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer file.Close()
		return WriteYAML(file, owner, items)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}
