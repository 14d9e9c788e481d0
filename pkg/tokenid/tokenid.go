// Package tokenid derives the join key shared by gaze-embedded AST references
// and tokenizer leaf tokens.
//
// A token id has the form "{file_id}:{start_line}:{start_col}-{end_line}:{end_col}".
// Both producers must go through this package; any divergence breaks the join
// silently.
package tokenid

import (
	"crypto/sha1" //nolint:gosec // identifier derivation, not a security boundary
	"encoding/hex"
	"path/filepath"
	"strconv"
	"strings"
)

// UnknownFile is the file id used when no source path is known.
const UnknownFile = "unknown"

// fileIDLen is the number of hex characters kept from the path digest.
const fileIDLen = 6

// Span is a leaf position range with 1-based lines and columns.
type Span struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// FileID returns a short identifier for a source file path.
// Paths are cleaned and slash-separated before hashing so that
// "./a/b.py" and "a/b.py" share an id.
func FileID(path string) string {
	if path == "" {
		return UnknownFile
	}

	normalized := filepath.ToSlash(filepath.Clean(path))
	sum := sha1.Sum([]byte(normalized)) //nolint:gosec // see import

	return hex.EncodeToString(sum[:])[:fileIDLen]
}

// Format renders a token id for a file id and span.
func Format(fileID string, span Span) string {
	var sb strings.Builder

	sb.Grow(len(fileID) + 24) //nolint:mnd // four small ints plus separators

	sb.WriteString(fileID)
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(span.StartLine))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(span.StartCol))
	sb.WriteByte('-')
	sb.WriteString(strconv.Itoa(span.EndLine))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(span.EndCol))

	return sb.String()
}

// ParseLineCol parses a "line:col" pair.
func ParseLineCol(s string) (line, col int, ok bool) {
	lineStr, colStr, found := strings.Cut(s, ":")
	if !found || strings.Contains(colStr, ":") {
		return 0, 0, false
	}

	line, err := strconv.Atoi(strings.TrimSpace(lineStr))
	if err != nil {
		return 0, 0, false
	}

	col, err = strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return 0, 0, false
	}

	return line, col, true
}

// ParseSpan parses leaf start/end strings into a Span.
func ParseSpan(start, end string) (Span, bool) {
	sLine, sCol, ok := ParseLineCol(start)
	if !ok {
		return Span{}, false
	}

	eLine, eCol, ok := ParseLineCol(end)
	if !ok {
		return Span{}, false
	}

	return Span{StartLine: sLine, StartCol: sCol, EndLine: eLine, EndCol: eCol}, true
}

// FromLeaf returns the token id for a leaf given as "line:col" strings.
// The second result is false when either coordinate is missing or malformed.
func FromLeaf(fileID, start, end string) (string, bool) {
	span, ok := ParseSpan(start, end)
	if !ok {
		return "", false
	}

	return Format(fileID, span), true
}
