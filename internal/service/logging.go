package service

import (
	"context"
	"strings"

	"tgsentry/internal/constants"
)

type contextKey string

// VerboseLoggingKey marks a context as allowed to log identifying values
// unmasked. It is set once at startup when the operator passes -verbose.
const VerboseLoggingKey contextKey = "verboseLogging"

// WithVerboseLogging returns a context under which sanitizers pass values
// through unmasked.
func WithVerboseLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, VerboseLoggingKey, true)
}

func isVerbose(ctx context.Context) bool {
	verbose, ok := ctx.Value(VerboseLoggingKey).(bool)
	return ok && verbose
}

// SanitizeChatID masks a chat identifier for logs, keeping only the last
// few characters so adjacent log lines can still be correlated.
func SanitizeChatID(ctx context.Context, chatID string) string {
	if isVerbose(ctx) {
		return chatID
	}
	if len(chatID) <= constants.DefaultChatIDMaskLength {
		return strings.Repeat("*", len(chatID))
	}
	masked := len(chatID) - constants.DefaultChatIDMaskLength
	return strings.Repeat("*", masked) + chatID[masked:]
}

// SanitizeText hides message content in logs unless verbose logging is on.
func SanitizeText(ctx context.Context, text string) string {
	if isVerbose(ctx) {
		return text
	}
	if text == "" {
		return ""
	}
	return "[hidden]"
}
