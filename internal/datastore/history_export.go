package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// HistoryRow is the Parquet schema of an exported journal row.
type HistoryRow struct {
	SiteID       string  `parquet:"site_id"`
	Kind         string  `parquet:"kind"`
	Status       int32   `parquet:"status"`
	Size         int64   `parquet:"size"`
	Hash         *string `parquet:"hash,optional"`
	Changed      bool    `parquet:"changed"`
	Excerpt      *string `parquet:"excerpt,optional"`
	Error        *string `parquet:"error,optional"`
	LinesAdded   int32   `parquet:"lines_added"`
	LinesDeleted int32   `parquet:"lines_deleted"`
	CheckedAt    int64   `parquet:"checked_at"`
}

// ExportResult describes a finished export.
type ExportResult struct {
	FilePath       string
	RecordsWritten int
	FileSize       int64
	WriteTime      time.Duration
}

// HistoryExporter writes journal rows to Parquet files.
type HistoryExporter struct {
	logger      zerolog.Logger
	compression string
}

// NewHistoryExporter creates an exporter using the named codec
// (zstd, snappy, gzip or none).
func NewHistoryExporter(compression string, logger zerolog.Logger) *HistoryExporter {
	return &HistoryExporter{
		logger:      logger.With().Str("component", "HistoryExporter").Logger(),
		compression: strings.ToLower(strings.TrimSpace(compression)),
	}
}

// ToHistoryRow converts a journal entry to its Parquet form.
func ToHistoryRow(e CheckEntry) HistoryRow {
	return HistoryRow{
		SiteID:       e.SiteID,
		Kind:         string(e.Kind),
		Status:       int32(e.Status),
		Size:         int64(e.Size),
		Hash:         StringPtrOrNil(e.Hash),
		Changed:      e.Changed,
		Excerpt:      StringPtrOrNil(e.Excerpt),
		Error:        StringPtrOrNil(e.Error),
		LinesAdded:   int32(e.LinesAdded),
		LinesDeleted: int32(e.LinesDeleted),
		CheckedAt:    e.CheckedAt.UnixMilli(),
	}
}

// Export writes entries to path, replacing any existing file.
func (x *HistoryExporter) Export(ctx context.Context, entries []CheckEntry, path string) (*ExportResult, error) {
	start := time.Now()

	if path == "" {
		return nil, errorwrapper.NewValidationError("path", path, "export path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create export directory")
	}

	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export cancelled: %w", err)
		}
		rows = append(rows, ToHistoryRow(e))
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create parquet file: "+path)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[HistoryRow](file, x.compressionOption())
	written, err := writer.Write(rows)
	if err != nil {
		_ = writer.Close()
		return nil, errorwrapper.WrapError(err, "failed to write history rows")
	}
	if err := writer.Close(); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to finalize parquet file")
	}

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	result := &ExportResult{
		FilePath:       path,
		RecordsWritten: written,
		FileSize:       size,
		WriteTime:      time.Since(start),
	}
	x.logger.Info().
		Str("file_path", path).
		Int("records_written", written).
		Dur("write_time", result.WriteTime).
		Msg("Exported check history")
	return result, nil
}

func (x *HistoryExporter) compressionOption() parquet.WriterOption {
	switch x.compression {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none", "uncompressed":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

// StringPtrOrNil converts string to pointer, or nil if string is empty
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
