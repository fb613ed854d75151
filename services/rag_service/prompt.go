package rag_service

import (
	"fmt"
	"strings"

	"github.com/sdiallo/docqa/rag_type"
)

const promptPreamble = "You are a document question-answering assistant. " +
	"Answer the question using only the context below. " +
	"If the context does not contain enough information to answer, say so explicitly."

// BuildPrompt renders the instruction prompt from a question and its
// ranked retrieval results. Results are emitted in the order given
// (best match first) and are never filtered or reordered here. An empty
// result list keeps the template structure with an empty context section.
func BuildPrompt(query string, results []rag_type.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\n\nContext:\n")
	for _, r := range results {
		if r.Snippet == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n- %s (relevance: %.2f)", r.Snippet, r.Score)
	}
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
