package models

import (
	"path/filepath"
	"strings"
)

// Format identifies how an uploaded file is turned into text.
type Format string

const (
	FormatPDF      Format = "PDF"
	FormatTXT      Format = "TXT"
	FormatDOCX     Format = "DOCX"
	FormatHTML     Format = "HTML"
	FormatMarkdown Format = "MARKDOWN"
	FormatXLSX     Format = "XLSX"
)

var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".txt":      FormatTXT,
	".docx":     FormatDOCX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".xlsx":     FormatXLSX,
}

// FormatFromFilename maps a file extension (case-insensitive) to a Format.
func FormatFromFilename(filename string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// File is a single upload handed over by the caller.
type File struct {
	Name string
	Data []byte
}

// TextUnit is the normalized text of one PDF page, one sheet, or one whole file.
type TextUnit struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Format  Format `json:"format"`
}

// Chunk is a window of a TextUnit's content. Offset is counted in runes.
type Chunk struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Format  Format `json:"format"`
	Index   int    `json:"index"`
	Offset  int    `json:"offset"`
}

// FileMetadata reports the outcome of extracting one uploaded file.
type FileMetadata struct {
	Filename        string `json:"filename"`
	Format          Format `json:"format,omitempty"`
	Title           string `json:"title,omitempty"`
	TotalPages      int    `json:"total_pages"`
	TotalTextLength int    `json:"total_text_length"`
	Error           string `json:"error,omitempty"`
}

func (m FileMetadata) Failed() bool {
	return m.Error != ""
}
