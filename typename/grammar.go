package typename

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// segmentPath is the grammar for a normalised ROS type name: a leading
// package segment followed by zero or more slash-separated segments.
type segmentPath struct {
	Segments []string `parser:"@Word (Slash @Word)*"`
}

// nolint:gochecknoglobals
var (
	segmentLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Word", Pattern: `[^/]+`},
		{Name: "Slash", Pattern: `/`},
	})

	segmentParser = participle.MustBuild[segmentPath](
		participle.Lexer(segmentLexer),
	)
)
