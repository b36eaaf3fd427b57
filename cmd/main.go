package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"scholar-chat/internal/config"
	"scholar-chat/internal/embedding"
	"scholar-chat/internal/llmservice"
	"scholar-chat/internal/metrics"
	"scholar-chat/internal/models"
	"scholar-chat/internal/rag"
	"scholar-chat/internal/session"
)

var (
	cfgFile      string
	verbose      bool
	jsonOutput   bool
	metricsAddr  string
	chunkSize    int
	chunkOverlap int
	topK         int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scholar-chat",
	Short: "Ask questions about your research papers",
	Long: `scholar-chat indexes PDF, TXT, DOCX, HTML, Markdown and XLSX documents in
memory and answers questions about them with citations to file and page.

Embeddings and answers come from an OpenAI compatible API, Ollama or Gemini,
as configured in the config file.`,
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in characters (overrides config)")
	rootCmd.PersistentFlags().IntVar(&chunkOverlap, "chunk-overlap", 0, "chunk overlap in characters (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve (overrides config)")

	rootCmd.AddCommand(askCmd, chatCmd, inspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func initialize(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}

	setupLogger(zerolog.InfoLevel)

	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		cfg.RAG.ChunkSize = chunkSize
	}
	if flags.Changed("chunk-overlap") {
		cfg.RAG.ChunkOverlap = chunkOverlap
	}
	if flags.Changed("top-k") {
		cfg.RAG.TopK = topK
	}
	if err := cfg.Err(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().Interface("rag", cfg.RAG).Str("embed_model", cfg.EmbedLLM.Model).Str("chat_model", cfg.ChatLLM.Model).Msg("Loaded config")

	if metricsAddr != "" {
		startMetricsServer(metricsAddr)
	}
	return nil
}

// setupLogger writes human readable logs to stderr; results go to stdout.
func setupLogger(level zerolog.Level) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

func newSession(ctx context.Context) (*session.Session, error) {
	embedder, err := embedding.NewEmbedder(ctx, cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("error initializing embedder: %w", err)
	}
	generator, err := llmservice.NewGenerator(ctx, cfg.ChatLLM)
	if err != nil {
		return nil, fmt.Errorf("error initializing chat model: %w", err)
	}

	return session.New(rag.NewRAG(embedder, generator, cfg.EmbedLLM.BatchSize), session.Settings{
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
		TopK:         cfg.RAG.TopK,
	})
}

// readFiles loads the given paths. Directories contribute every file with a
// supported extension, in lexical order.
func readFiles(paths []string) ([]models.File, error) {
	var files []models.File
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			file, err := readFile(path)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if _, ok := models.FormatFromFilename(p); ok && !d.IsDir() {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, p := range found {
			file, err := readFile(p)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
	}
	return files, nil
}

func readFile(path string) (models.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.File{}, fmt.Errorf("error reading %s: %w", path, err)
	}
	return models.File{Name: filepath.Base(path), Data: data}, nil
}

// processFiles indexes files into sess and reports them on w, rendering build
// progress unless JSON output was requested.
func processFiles(ctx context.Context, w io.Writer, sess *session.Session, paths []string) error {
	files, err := readFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents found in %s", strings.Join(paths, ", "))
	}

	progress := newBuildProgress()
	metas, err := sess.Process(ctx, files, progress.update)
	progress.finish()

	if !jsonOutput {
		printFiles(w, metas)
	}
	if err != nil {
		return err
	}

	if info, ok := sess.Info(); ok && !jsonOutput {
		printIndexInfo(w, info)
	}
	return nil
}
