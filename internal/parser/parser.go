package parser

import (
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"scholar-chat/internal/metrics"
	"scholar-chat/internal/models"
)

// extraction is the raw text of a document before normalization. Every entry of
// pages is one page (PDF) or sheet (XLSX); single-page formats have exactly one.
type extraction struct {
	pages []string
	title string
}

type extractFunc func(data []byte) (*extraction, error)

var extractors = map[models.Format]extractFunc{
	models.FormatPDF:      extractPDF,
	models.FormatTXT:      extractText,
	models.FormatDOCX:     extractDOCX,
	models.FormatHTML:     extractHTML,
	models.FormatMarkdown: extractMarkdown,
	models.FormatXLSX:     extractXLSX,
}

// Extract turns the bytes of one uploaded file into normalized text units.
// The metadata is filled in as far as extraction got, even on error.
func Extract(data []byte, filename string) ([]models.TextUnit, models.FileMetadata, error) {
	meta := models.FileMetadata{Filename: filename}

	format, ok := models.FormatFromFilename(filename)
	if !ok {
		return nil, meta, &models.UnsupportedFormatError{
			Filename:  filename,
			Extension: filepath.Ext(filename),
		}
	}
	meta.Format = format

	ext, err := protectExtract(extractors[format], data)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: %w", models.ErrExtractionFailure, filename, err)
	}

	meta.Title = ext.title
	meta.TotalPages = len(ext.pages)

	var units []models.TextUnit
	for i, page := range ext.pages {
		content := Normalize(page)
		if content == "" {
			continue
		}
		units = append(units, models.TextUnit{
			Content: content,
			Source:  filename,
			Page:    i + 1,
			Format:  format,
		})
		meta.TotalTextLength += utf8.RuneCountInString(content)
	}

	log.Debug().
		Str("filename", filename).
		Str("format", string(format)).
		Int("pages", meta.TotalPages).
		Int("units", len(units)).
		Msg("Extracted document")

	return units, meta, nil
}

// ExtractBatch extracts every file independently. A failing file becomes an
// error-bearing metadata record and contributes no units; the metadata slice
// always has one entry per input file, in input order.
func ExtractBatch(files []models.File) ([]models.TextUnit, []models.FileMetadata) {
	var allUnits []models.TextUnit
	allMetadata := make([]models.FileMetadata, 0, len(files))

	for _, file := range files {
		start := time.Now()
		units, meta, err := Extract(file.Data, file.Name)
		metrics.CaptureExecutionMetrics("document_extraction", time.Since(start))

		if err != nil {
			log.Error().Err(err).Str("filename", file.Name).Msg("Error processing document")
			metrics.CountDocument(string(meta.Format), "error")
			allMetadata = append(allMetadata, models.FileMetadata{
				Filename: file.Name,
				Format:   meta.Format,
				Error:    err.Error(),
			})
			continue
		}

		metrics.CountDocument(string(meta.Format), "ok")
		allUnits = append(allUnits, units...)
		allMetadata = append(allMetadata, meta)
	}

	return allUnits, allMetadata
}

// protectExtract keeps a misbehaving document library from taking the batch down.
func protectExtract(fn extractFunc, data []byte) (ext *extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			ext, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return fn(data)
}

func extractText(data []byte) (*extraction, error) {
	return &extraction{pages: []string{decodeUTF8(data)}}, nil
}
