package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/gaze"
	"github.com/Sumatoshi-tech/codegaze/pkg/tokenize"
)

func validate(t *testing.T, schema *Schema, doc []byte) *gojsonschema.Result {
	t.Helper()

	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(raw), gojsonschema.NewBytesLoader(doc))
	require.NoError(t, err)

	return res
}

func TestGenerateSchema_TokenList(t *testing.T) {
	t.Parallel()

	schema := generateSchema("tokens", []tokenize.Token{})

	assert.Equal(t, "array", schema.Type)
	assert.Equal(t, "#/definitions/Token", schema.Items.Ref)
	require.Contains(t, schema.Definitions, "Position")
	assert.ElementsMatch(t, []string{"type", "text", "start", "end", "token_id"}, schema.Definitions["Token"].Required)

	f, err := os.Open(filepath.Join("..", "..", "pkg", "pipeline", "testdata", "tokens.json"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	tokens, err := tokenize.LoadTokens(f, "testdata/add.py")
	require.NoError(t, err)

	doc, err := json.Marshal(tokens)
	require.NoError(t, err)

	res := validate(t, schema, doc)
	assert.True(t, res.Valid(), "%v", res.Errors())

	res = validate(t, schema, []byte(`[{"type": "identifier", "text": "add"}]`))
	assert.False(t, res.Valid())
}

func TestGenerateSchema_OmitemptyIsOptional(t *testing.T) {
	t.Parallel()

	schema := generateSchema("environment", gaze.Environment{})

	assert.Equal(t, "#/definitions/Environment", schema.Ref)
	assert.NotContains(t, schema.Definitions["Environment"].Required, "project_path")
	assert.Contains(t, schema.Definitions["Environment"].Required, "ide_name")

	doc, err := json.Marshal(gaze.Environment{ScreenWidth: 1920, ScreenHeight: 1080, ScaleX: 1, ScaleY: 1, IDEName: "VSCode"})
	require.NoError(t, err)

	res := validate(t, schema, doc)
	assert.True(t, res.Valid(), "%v", res.Errors())
}

func TestGenerateSchema_FixationRecords(t *testing.T) {
	t.Parallel()

	schema := generateSchema("fixations", []fixation.Record{})

	doc, err := json.Marshal([]fixation.Record{{Index: 1, TokenID: "d112e9:1:5-1:8", StartTime: 1000, EndTime: 1080, DurationMS: 80, NumSamples: 5, Value: "add"}})
	require.NoError(t, err)

	res := validate(t, schema, doc)
	assert.True(t, res.Valid(), "%v", res.Errors())

	res = validate(t, schema, []byte(`[{"index": "one"}]`))
	assert.False(t, res.Valid())
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "saccades.schema.json")

	require.NoError(t, writeSchema(path, generateSchema("saccades", []fixation.Saccade{})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Schema

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, draft07, decoded.Schema)
	assert.Equal(t, "codegaze saccades", decoded.Title)
}

func TestOutputs_AllGenerate(t *testing.T) {
	t.Parallel()

	for name, doc := range outputs {
		schema := generateSchema(name, doc)
		assert.NotEmpty(t, schema.Type+schema.Ref, name)
	}
}
