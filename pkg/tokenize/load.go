package tokenize

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/codegaze/pkg/tokenid"
)

// ErrInvalidTokenList is returned when a token list does not match the schema.
var ErrInvalidTokenList = errors.New("invalid token list")

//go:embed schema/tokens.schema.json
var schemaFS embed.FS

const schemaFile = "schema/tokens.schema.json"

// LoadTokens reads a token list produced by an external tokenizer for the
// file at sourcePath. The document is validated against the embedded schema
// before decoding. Every token id is derived from sourcePath and the token
// span; any token_id present in the document is ignored.
func LoadTokens(r io.Reader, sourcePath string) ([]Token, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read token list: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var tokens []Token

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTokenList, err)
	}

	fileID := tokenid.FileID(sourcePath)
	for i := range tokens {
		tokens[i].TokenID = tokenid.Format(fileID, tokens[i].Span())
	}

	return tokens, nil
}

// Validate checks a JSON token list against the embedded schema.
func Validate(data []byte) error {
	schema, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTokenList, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidTokenList, strings.Join(msgs, "; "))
}
