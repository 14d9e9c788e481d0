// Package gaze decodes eye-tracking telemetry into time-ordered gaze samples.
package gaze

// Location is the editor position reported for a gaze sample.
// Numeric fields are nil when the recorder did not emit them.
type Location struct {
	Path   string `json:"path,omitempty"   yaml:"path,omitempty"`
	Line   *int   `json:"line,omitempty"   yaml:"line,omitempty"`
	Column *int   `json:"column,omitempty" yaml:"column,omitempty"`
	X      *int   `json:"x,omitempty"      yaml:"x,omitempty"`
	Y      *int   `json:"y,omitempty"      yaml:"y,omitempty"`
}

// Level is one enclosing-scope span of an AST reference, outermost first.
// Start and End are "line:col" strings as recorded.
type Level struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end"   yaml:"end"`
	Tag   string `json:"tag"   yaml:"tag"`
}

// ASTRef is the AST span a gaze sample landed on.
type ASTRef struct {
	// Token is the raw token text, nil when the recorder omitted it.
	Token *string `json:"token"              yaml:"token"`
	// Type is the AST node type, nil when omitted.
	Type *string `json:"type"               yaml:"type"`
	// Levels are the enclosing spans; the last one is the leaf.
	Levels []Level `json:"levels"             yaml:"levels"`
	// TokenID is empty when no leaf span could be derived.
	TokenID string `json:"token_id,omitempty" yaml:"token_id,omitempty"`
}

// Leaf returns the deepest level, or false when there are none.
func (a *ASTRef) Leaf() (Level, bool) {
	if a == nil || len(a.Levels) == 0 {
		return Level{}, false
	}

	return a.Levels[len(a.Levels)-1], true
}

// Tags returns the level tags in order.
func (a *ASTRef) Tags() []string {
	if a == nil {
		return nil
	}

	tags := make([]string, len(a.Levels))
	for i, lvl := range a.Levels {
		tags[i] = lvl.Tag
	}

	return tags
}

// Sample is a single merged-eye gaze observation.
type Sample struct {
	// T is the timestamp in milliseconds.
	T        int64     `json:"t"                  yaml:"t"`
	X        float64   `json:"x"                  yaml:"x"`
	Y        float64   `json:"y"                  yaml:"y"`
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
	AST      *ASTRef   `json:"ast,omitempty"      yaml:"ast,omitempty"`
}

// TokenID returns the sample's token identity, or "" when absent.
func (s *Sample) TokenID() string {
	if s.AST == nil {
		return ""
	}

	return s.AST.TokenID
}

// ParseStats counts what the parser kept and dropped.
type ParseStats struct {
	Records          int `json:"records"            yaml:"records"`
	Kept             int `json:"kept"               yaml:"kept"`
	MissingTimestamp int `json:"missing_timestamp"  yaml:"missing_timestamp"`
	InvalidEyes      int `json:"invalid_eyes"       yaml:"invalid_eyes"`
	WithoutTokenID   int `json:"without_token_id"   yaml:"without_token_id"`
	RepeatsResolved  int `json:"repeats_resolved"   yaml:"repeats_resolved"`
}

// Dropped returns the number of records that produced no sample.
func (s ParseStats) Dropped() int {
	return s.MissingTimestamp + s.InvalidEyes
}
