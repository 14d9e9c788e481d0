package tokenize

import (
	"fmt"
	"path/filepath"
	"strings"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"
)

// grammarNames maps enry language names to grammar names where lowercasing
// is not enough.
var grammarNames = map[string]string{
	"c#":              "c_sharp",
	"c++":             "cpp",
	"shell":           "bash",
	"objective-c":     "objc",
	"emacs lisp":      "elisp",
	"common lisp":     "commonlisp",
	"f#":              "fsharp",
	"vim script":      "vim",
	"protocol buffer": "proto",
	"git config":      "git_config",
	"jsx":             "javascript",
	"unix assembly":   "asm",
	"html+erb":        "embedded_template",
}

// GrammarName normalizes a language name to its tree-sitter grammar name.
func GrammarName(language string) string {
	key := strings.ToLower(strings.TrimSpace(language))
	if name, ok := grammarNames[key]; ok {
		return name
	}

	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}

// DetectLanguage guesses the grammar for a file from its name and content.
func DetectLanguage(path string, content []byte) (string, error) {
	lang := enry.GetLanguage(filepath.Base(path), content)
	if lang == "" {
		return "", fmt.Errorf("%w: cannot detect language of %s", ErrUnsupportedLanguage, path)
	}

	name := GrammarName(lang)

	if _, err := grammar(name); err != nil {
		return "", err
	}

	return name, nil
}

// grammar resolves a grammar, recovering from lookups of unknown names.
func grammar(language string) (*sitter.Language, error) {
	name := GrammarName(language)
	if name == "" {
		return nil, fmt.Errorf("%w: empty language", ErrUnsupportedLanguage)
	}

	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = forest.GetLanguage(name)
	}()

	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	return lang, nil
}
