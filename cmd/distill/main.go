// Command distill runs one-shot extractions from the command line: parse a
// file, walk it in overlapping windows, extract per window, merge, and write
// the result as JSON.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docdistill/internal/config"
	"github.com/dgallion1/docdistill/internal/extract"
	"github.com/dgallion1/docdistill/internal/pipeline"
	"github.com/dgallion1/docdistill/internal/schema"
)

func main() {
	root := &cobra.Command{
		Use:          "distill",
		Short:        "Extract structured study material from documents",
		SilenceUsage: true,
	}
	root.AddCommand(extractCMD(), quizCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type runFlags struct {
	output   string
	title    string
	window   int
	overlap  int
	parallel int
	verbose  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&f.title, "title", "", "document title override")
	cmd.Flags().IntVar(&f.window, "window", 0, "segments per chunk (default per schema)")
	cmd.Flags().IntVar(&f.overlap, "overlap", -1, "segments shared between chunks (default per schema)")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "max concurrent extraction calls")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")
}

func extractCMD() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract definitions, comparisons, timelines, and concepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.Context(), args[0], schema.KindKnowledge, "", 0, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func quizCMD() *cobra.Command {
	var flags runFlags
	var questionType string
	var charLimit int
	cmd := &cobra.Command{
		Use:   "quiz <file>",
		Short: "Generate quiz questions from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.Context(), args[0], schema.KindQuiz, questionType, charLimit, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&questionType, "type", "", `question style: "MCQ", "True/False", or "Long Answer"`)
	cmd.Flags().IntVar(&charLimit, "char-limit", 0, "answer length limit in characters")
	return cmd
}

func runOneShot(ctx context.Context, path string, kind schema.Kind, questionType string, charLimit int, flags runFlags) error {
	cfg := config.Load()

	logOut := os.Stderr
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	window, overlap := cfg.KnowledgeWindow, cfg.KnowledgeOverlap
	if kind == schema.KindQuiz {
		window, overlap = cfg.QuizWindow, cfg.QuizOverlap
	}
	if flags.window > 0 {
		window = flags.window
	}
	if flags.overlap >= 0 {
		overlap = flags.overlap
	}
	if questionType == "" {
		questionType = cfg.DefaultQuestionType
	}
	if charLimit <= 0 {
		charLimit = cfg.AnswerCharLimit
	}
	parallel := cfg.MaxConcurrentExtract
	if flags.parallel > 0 {
		parallel = flags.parallel
	}

	result, err := pipeline.RunOnce(ctx, pipeline.RunOnceRequest{
		Filename:     path,
		Data:         data,
		Title:        flags.title,
		Schema:       kind,
		QuestionType: questionType,
		CharLimit:    charLimit,
		Window:       window,
		Overlap:      overlap,
		Parallel:     parallel,
		Provider:     provider,
		Log:          log,
	})
	if err != nil {
		return err
	}
	if result.FailedChunks > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d of %d chunks failed; output is partial\n",
			result.FailedChunks, result.TotalChunks)
	}

	out := os.Stdout
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", flags.output, err)
		}
		defer f.Close()
		out = f
	}
	return result.WriteJSON(out)
}

func newProvider(ctx context.Context, cfg config.Config) (extract.Provider, error) {
	stats := extract.NewLLMStats(time.Hour)
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		return extract.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, stats)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		return extract.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, stats), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want anthropic or gemini)", cfg.Provider)
	}
}
