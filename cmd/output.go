package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"scholar-chat/internal/helper"
	"scholar-chat/internal/models"
	"scholar-chat/internal/session"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	answerColor = color.New(color.FgGreen)
	sourceColor = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

// buildProgress renders embedding progress. The bar is created on the first
// update, when the chunk count is known.
type buildProgress struct {
	bar *progressbar.ProgressBar
}

func newBuildProgress() *buildProgress {
	return &buildProgress{}
}

func (p *buildProgress) update(done, total int) {
	if jsonOutput {
		return
	}
	if p.bar == nil {
		p.bar = getProgressBar(total, "Embedding chunks")
	}
	_ = p.bar.Set(done)
}

func (p *buildProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printFiles(w io.Writer, metas []models.FileMetadata) {
	titleColor.Fprintln(w, "Documents")
	for _, m := range metas {
		if m.Failed() {
			errorColor.Fprintf(w, "  ✗ %s: %s\n", m.Filename, m.Error)
			continue
		}
		line := fmt.Sprintf("  ✓ %s (%s, %d pages, %d characters)", m.Filename, m.Format, m.TotalPages, m.TotalTextLength)
		if m.Title != "" {
			line += fmt.Sprintf(" %q", m.Title)
		}
		fmt.Fprintln(w, line)
	}
}

func printIndexInfo(w io.Writer, info models.IndexInfo) {
	dimColor.Fprintf(w, "Indexed %d chunks with %s (%d dimensions, %s store)\n",
		info.NumChunks, info.EmbeddingModelID, info.Dimensions, info.VectorStoreType)
}

func printAnswer(w io.Writer, result models.AnswerResult) {
	if jsonOutput {
		helper.FprettyPrint(w, result)
		return
	}
	answerColor.Fprintln(w, result.Answer)
	fmt.Fprintln(w)
	printSources(w, result.Sources)
}

func printSources(w io.Writer, sources []models.Source) {
	if len(sources) == 0 {
		dimColor.Fprintln(w, "No sources.")
		return
	}
	titleColor.Fprintln(w, "Sources")
	for i, s := range sources {
		sourceColor.Fprintf(w, "  %d. %s, page %d\n", i+1, s.Source, s.Page)
		dimColor.Fprintf(w, "     %s\n", s.Content)
	}
}

func printSettings(w io.Writer, settings session.Settings) {
	fmt.Fprintf(w, "chunk_size=%d chunk_overlap=%d top_k=%d\n",
		settings.ChunkSize, settings.ChunkOverlap, settings.TopK)
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "Error: %v\n", err)
}
