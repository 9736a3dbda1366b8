package wizard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseError carries a short message for the user and an optional
// longer one for debug verbosity.
type parseError struct {
	userMessage  string
	debugMessage string
}

// parseAnswer converts raw terminal input into a typed answer value for
// the question. An empty input means the default when one exists and is
// otherwise rejected for required questions.
func parseAnswer(q *question, input string) (any, *parseError) {
	if input == "" {
		if q.Default != nil {
			return q.Default, nil
		}
		if q.Required {
			return nil, &parseError{userMessage: "an answer is required"}
		}
		return nil, nil
	}

	switch q.Type {
	case "boolean":
		return parseBool(input)
	case "integer":
		n, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return nil, &parseError{
				userMessage:  "expected a whole number",
				debugMessage: err.Error(),
			}
		}
		return float64(n), nil
	case "number":
		f, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return nil, &parseError{
				userMessage:  "expected a number",
				debugMessage: err.Error(),
			}
		}
		return f, nil
	case "enum":
		return parseChoice(input, q.Choices)
	case "list":
		var items []any
		if err := json.Unmarshal([]byte(input), &items); err != nil {
			return nil, &parseError{
				userMessage:  "expected a JSON array, e.g. [{\"field\": \"value\"}]",
				debugMessage: err.Error(),
			}
		}
		return items, nil
	default:
		return input, nil
	}
}

func parseBool(input string) (any, *parseError) {
	switch strings.ToLower(input) {
	case "y", "yes", "true", "1":
		return true, nil
	case "n", "no", "false", "0":
		return false, nil
	}
	return nil, &parseError{userMessage: "expected yes or no"}
}

// parseChoice accepts an exact choice or an unambiguous prefix.
func parseChoice(input string, choices []string) (any, *parseError) {
	var matches []string
	for _, c := range choices {
		if c == input {
			return c, nil
		}
		if strings.HasPrefix(c, input) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &parseError{
			userMessage: fmt.Sprintf("expected one of: %s", strings.Join(choices, ", ")),
		}
	default:
		return nil, &parseError{
			userMessage: fmt.Sprintf("ambiguous choice, matches: %s", strings.Join(matches, ", ")),
		}
	}
}
