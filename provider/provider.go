// Package provider defines the AI provider interface and implementations.
package provider

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/wptl"
)

// AIProvider is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type AIProvider = wptl.AIProvider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = wptl.TranslateRequest

// BuildPrompt returns the instruction sent with every translation call.
// Batched texts carry separator lines which the model must keep in place.
func BuildPrompt(req TranslateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following text into %s language.", req.TargetLang)
	if req.SourceLang != "" {
		fmt.Fprintf(&b, " The source language is %s.", req.SourceLang)
	}
	b.WriteString(" Preserve the tone, style and formatting of the original text.")
	if strings.Contains(req.Text, wptl.BatchDelimiter) {
		b.WriteString(" The text contains several independent parts separated by lines" +
			" holding only ---. Keep every separator line exactly as it is and translate each part on its own.")
	}
	b.WriteString(" Only return the translated text without any explanations or additional content:\n\n")
	b.WriteString(req.Text)
	return b.String()
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}
