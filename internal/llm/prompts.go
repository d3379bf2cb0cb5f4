package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/extraction.txt
var extractionPrompt string

const fileNamePlaceholder = "{{nome_arquivo}}"

// ExtractionInstruction renders the per-document extraction prompt.
func ExtractionInstruction(fileName string) string {
	return strings.ReplaceAll(strings.TrimSpace(extractionPrompt), fileNamePlaceholder, fileName)
}
