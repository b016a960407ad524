package grammar

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

var conditionParser = buildParser()

func buildParser() *participle.Parser[Condition] {
	p, err := participle.Build[Condition](
		participle.Lexer(ConditionLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build condition parser: %w", err))
	}
	return p
}

// ParseCondition parses a preprocessor condition expression. The source name
// is used in parse-error positions only.
func ParseCondition(sourceName, condition string) (*Condition, error) {
	return conditionParser.ParseString(sourceName, condition)
}
