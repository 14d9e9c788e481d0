package observability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// allowedPrefixes are attribute key prefixes that pass through the filter.
// Any key starting with one of these prefixes is allowed.
var allowedPrefixes = []string{
	"codegaze.",
	"error.",
	"recording.",
	"samples.",
	"detector.",
	"fixations.",
	"saccades.",
	"tokens.",
	"join.",
	"batch.",
}

// blockedPrefixes are attribute key prefixes that are always stripped.
// Source text and filesystem layout of the participant stay local.
var blockedPrefixes = []string{
	"source.",
	"user.",
}

// blockedKeys are exact attribute keys that are always stripped.
var blockedKeys = map[string]bool{
	"token.text":   true,
	"token.value":  true,
	"project.path": true,
}

// attributeFilter is a SpanProcessor that strips blocked/unknown attributes
// before forwarding to a delegate processor. Token text, source content and
// project paths never reach the exporter.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter returns a SpanProcessor that filters span attributes
// against the allow-list. When logger is non-nil, blocked attributes are
// logged as warnings.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

// OnStart delegates to the wrapped processor.
func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd filters attributes, then delegates to the wrapped processor.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	// ReadOnlySpan attributes cannot be mutated; wrap with filtered view.
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

// Shutdown delegates to the wrapped processor.
func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

// ForceFlush delegates to the wrapped processor.
func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

// isAllowed reports whether key may be exported. Blocked keys win over the
// allow-list; a key matching neither is dropped.
func (f *attributeFilter) isAllowed(key string) bool {
	hasPrefix := func(prefix string) bool { return strings.HasPrefix(key, prefix) }

	allowed := !blockedKeys[key] && !slices.ContainsFunc(blockedPrefixes, hasPrefix) &&
		(key == "error" || slices.ContainsFunc(allowedPrefixes, hasPrefix))

	if !allowed && f.logger != nil {
		f.logger.Warn("attribute blocked by filter", "key", key)
	}

	return allowed
}

// filteredSpan wraps a ReadOnlySpan and returns only allowed attributes.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

// Attributes returns only the allowed attributes.
func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return slices.DeleteFunc(slices.Clone(s.ReadOnlySpan.Attributes()), func(kv attribute.KeyValue) bool {
		return !s.filter.isAllowed(string(kv.Key))
	})
}
