package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scholar-chat/internal/helper"
	"scholar-chat/internal/models"
	"scholar-chat/internal/parser"
)

type inspectReport struct {
	Files        []models.FileMetadata `json:"files"`
	Units        int                   `json:"units"`
	Chunks       int                   `json:"chunks"`
	ChunkSize    int                   `json:"chunk_size"`
	ChunkOverlap int                   `json:"chunk_overlap"`
	ChunksByFile map[string]int        `json:"chunks_by_file"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE_OR_DIR...",
	Short: "Extract and chunk documents without calling any model",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := readFiles(args)
		if err != nil {
			return err
		}

		report, err := inspect(files, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			helper.FprettyPrint(out, report)
			return nil
		}
		printFiles(out, report.Files)
		fmt.Fprintf(out, "%d text units, %d chunks (size %d, overlap %d)\n",
			report.Units, report.Chunks, report.ChunkSize, report.ChunkOverlap)
		for _, m := range report.Files {
			if !m.Failed() {
				dimColor.Fprintf(out, "  %s: %d chunks\n", m.Filename, report.ChunksByFile[m.Filename])
			}
		}
		return nil
	},
}

func inspect(files []models.File, chunkSize, chunkOverlap int) (inspectReport, error) {
	units, metas := parser.ExtractBatch(files)
	chunks, err := parser.ChunkUnits(units, chunkSize, chunkOverlap)
	if err != nil {
		return inspectReport{}, err
	}

	byFile := make(map[string]int)
	for _, c := range chunks {
		byFile[c.Source]++
	}
	return inspectReport{
		Files:        metas,
		Units:        len(units),
		Chunks:       len(chunks),
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		ChunksByFile: byFile,
	}, nil
}
