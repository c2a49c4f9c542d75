// Package main provides the voice agent worker CLI. The console command runs
// a development session that reads user turns from stdin and prints the
// streamed response instead of synthesizing audio.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voicekb/voicerag/internal/agent"
	"github.com/voicekb/voicerag/internal/config"
	"github.com/voicekb/voicerag/internal/embedding"
)

var rootCmd = &cobra.Command{
	Use:   "voice-agent",
	Short: "Knowledge-augmented conversational agent worker",
	Long:  "Worker that merges knowledge base retrieval into live conversation turns",
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run an interactive text session on stdin/stdout",
	Long: `Runs the agent loop against the terminal instead of an audio stack.

Each line of input is treated as one completed user turn. The response is
streamed piece by piece as it would be handed to speech synthesis.

Environment variables:
  OPENAI_API_KEY   OpenAI API key (required)
  RAG_SERVER_URL   RAG server base URL (default: http://localhost:8001)
  API_SERVER_URL   API server base URL for prompt fetch (default: http://localhost:3000)
  OBSERVER_WS_URL  WebSocket observer endpoint (optional)
  LLM_MODEL        Chat model (default: gpt-4o)`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// consoleSink prints streamed pieces in place of audio synthesis.
type consoleSink struct{}

func (consoleSink) Write(_ context.Context, piece string) error {
	_, err := fmt.Print(piece)
	return err
}

func runConsole(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.Load()

	client, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("create OpenAI client: %w", err)
	}

	ragClient := agent.NewRAGClient(cfg.RAGServerURL, logger)
	defer ragClient.Close()

	var channel agent.DataChannel = agent.NoopChannel{Logger: logger}
	if cfg.ObserverURL != "" {
		ws, err := agent.DialObserver(ctx, cfg.ObserverURL)
		if err != nil {
			logger.Warn("Observer gateway unreachable, transcripts will be discarded", "error", err)
		} else {
			defer ws.Close()
			channel = ws
		}
	}

	publisher := agent.NewPublisher(channel, 0, logger)
	defer publisher.Close()

	prompt := agent.FetchSystemPrompt(ctx, cfg.APIServerURL, logger)

	session := agent.NewSession(
		agent.NewInjector(ragClient, publisher, logger),
		agent.NewLLM(client.Client(), cfg.LLMModel, logger),
		consoleSink{},
		prompt,
		logger,
	)

	fmt.Println("Console session started. Type a question, Ctrl-D to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := session.ProcessTurn(ctx, text); err != nil {
			logger.Error("Turn failed", "error", err)
		}
		fmt.Println()
	}

	return scanner.Err()
}
