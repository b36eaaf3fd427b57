package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrExtractionFailure  = errors.New("failed to extract document text")
	ErrEmptyCorpus        = errors.New("no text could be extracted from the uploaded documents")
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")
	ErrInvalidTopK        = errors.New("top-k must be at least 1")
	ErrEmbeddingService   = errors.New("embedding service error")
	ErrGenerationService  = errors.New("generation service error")
	ErrEmptyInput         = errors.New("no chunks to index")
	ErrEmptyQuestion      = errors.New("question is empty")
	ErrIndexNotBuilt      = errors.New("index has not been built, process documents first")
	ErrAlreadyIndexed     = errors.New("documents already indexed, reset before processing a new batch")
)

// UnsupportedFormatError carries the file that could not be dispatched.
type UnsupportedFormatError struct {
	Filename  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %q (extension %q)", ErrUnsupportedFormat, e.Filename, e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
