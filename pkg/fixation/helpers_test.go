package fixation_test

import "github.com/Sumatoshi-tech/codegaze/pkg/gaze"

func strPtr(s string) *string { return &s }

// at builds a sample without an AST reference.
func at(t int64, x, y float64) gaze.Sample {
	return gaze.Sample{T: t, X: x, Y: y}
}

// on builds a sample looking at a token.
func on(t int64, x, y float64, tokenID, text string) gaze.Sample {
	return gaze.Sample{
		T: t,
		X: x,
		Y: y,
		AST: &gaze.ASTRef{
			Token:   strPtr(text),
			Type:    strPtr("identifier"),
			Levels:  []gaze.Level{{Start: "1:1", End: "1:2", Tag: "identifier"}},
			TokenID: tokenID,
		},
	}
}

// typed builds a sample carrying an AST reference of the given node type.
func typed(t int64, x, y float64, text, nodeType string) gaze.Sample {
	s := on(t, x, y, "", text)
	s.AST.Type = strPtr(nodeType)

	return s
}
