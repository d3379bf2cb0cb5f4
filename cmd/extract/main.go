package main

// Run the extraction client against a local file and print the raw text:
//   go run ./cmd/extract -file ./RG_Maria.pdf

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promotore-backend/internal/documents"
	"promotore-backend/internal/extraction"
	"promotore-backend/internal/llm"
	openai "promotore-backend/internal/llm/openai"
	"promotore-backend/internal/shared/config"
	localstore "promotore-backend/internal/shared/storage/object/local"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to a pdf, jpg, jpeg or png document")
	instruction := flag.String("prompt", "", "Instruction override (defaults to the extraction prompt)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	dpi := flag.Int("dpi", cfg.RasterDPI, "PDF render resolution")
	outPath := flag.String("out", "", "Path to write the extracted text (optional)")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}
	fileName := filepath.Base(*filePath)
	if !documents.Allowed(fileName) {
		exitErr(fmt.Sprintf("unsupported file type: %s", filepath.Ext(fileName)))
	}

	vision, err := openai.NewVisionClient(openai.Options{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     *model,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.OpenAITimeout,
	})
	if err != nil {
		exitErr(err.Error())
	}

	store := localstore.New(filepath.Dir(*filePath))
	rasterizer := extraction.NewRasterizer(nil, cfg.PdftoppmPath, *dpi)
	client := extraction.NewClient(store, rasterizer, vision)

	prompt := *instruction
	if strings.TrimSpace(prompt) == "" {
		prompt = llm.ExtractionInstruction(fileName)
	}

	text, err := client.Extract(context.Background(), fileName, prompt)
	if err != nil {
		exitErr(fmt.Sprintf("extract: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(text), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.WriteString(text); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if !strings.HasSuffix(text, "\n") {
		_, _ = os.Stdout.WriteString("\n")
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
