// Package tokenize extracts leaf tokens from source files with tree-sitter.
//
// Every emitted token carries the token id that gaze telemetry uses for the
// same source span, so the two sides can be joined in a token index.
package tokenize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/codegaze/pkg/safeconv"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenid"
)

// Sentinel errors for tokenization.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	errNoRootNode          = errors.New("tokenize: no root node")
)

// Position is a 1-based line and column.
type Position struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Token is a non-blank leaf of the syntax tree.
type Token struct {
	Type    string   `json:"type"     yaml:"type"`
	Text    string   `json:"text"     yaml:"text"`
	Start   Position `json:"start"    yaml:"start"`
	End     Position `json:"end"      yaml:"end"`
	TokenID string   `json:"token_id" yaml:"token_id"`
}

// Span returns the token position range.
func (t *Token) Span() tokenid.Span {
	return tokenid.Span{
		StartLine: t.Start.Line,
		StartCol:  t.Start.Column,
		EndLine:   t.End.Line,
		EndCol:    t.End.Column,
	}
}

// Extract parses source in the given tree-sitter language and returns its
// leaf tokens in document order. filePath only feeds the token id.
func Extract(ctx context.Context, source []byte, language, filePath string) ([]Token, error) {
	lang, err := grammar(language)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", language, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	w := walker{source: source, fileID: tokenid.FileID(filePath)}
	w.walk(root)

	return w.tokens, nil
}

type walker struct {
	source []byte
	fileID string
	tokens []Token
}

// walk visits nodes depth-first in child order and collects leaves.
func (w *walker) walk(n sitter.Node) {
	count := n.ChildCount()
	if count == 0 {
		w.leaf(n)

		return
	}

	for idx := range count {
		w.walk(n.Child(idx))
	}
}

func (w *walker) leaf(n sitter.Node) {
	start := safeconv.MustUintToInt(n.StartByte())
	end := safeconv.MustUintToInt(n.EndByte())

	if end > len(w.source) || start > end {
		return
	}

	text := string(w.source[start:end])
	if strings.TrimSpace(text) == "" {
		return
	}

	sp, ep := n.StartPoint(), n.EndPoint()

	tok := Token{
		Type:  n.Type(),
		Text:  text,
		Start: Position{Line: int(sp.Row) + 1, Column: int(sp.Column) + 1}, //nolint:gosec // tree-sitter coordinates fit in int
		End:   Position{Line: int(ep.Row) + 1, Column: int(ep.Column) + 1}, //nolint:gosec // tree-sitter coordinates fit in int
	}
	tok.TokenID = tokenid.Format(w.fileID, tok.Span())

	w.tokens = append(w.tokens, tok)
}
