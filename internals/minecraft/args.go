package minecraft

import (
	"regexp"
	"strings"
)

var variableRegex = regexp.MustCompile(`\$\{([a-zA-Z0-9_]+)\}`)

// RenderArguments filters rule guarded templates against ctx and
// substitutes every ${name} placeholder from vars. A placeholder
// without a bound variable is an error, never an empty string.
func RenderArguments(args []Argument, vars map[string]string, ctx *RuleContext) ([]string, error) {
	rendered := make([]string, 0, len(args))

	for _, arg := range args {
		if !RulesApply(arg.Rules, ctx) {
			continue
		}
		for _, template := range arg.Value {
			value, err := substitute(template, vars)
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, value)
		}
	}

	return rendered, nil
}

// RenderLegacyArguments renders the pre-1.13 minecraftArguments string
func RenderLegacyArguments(line string, vars map[string]string) ([]string, error) {
	if line == "" {
		return nil, nil
	}

	fields := strings.Fields(line)
	rendered := make([]string, 0, len(fields))
	for _, template := range fields {
		value, err := substitute(template, vars)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, value)
	}
	return rendered, nil
}

func substitute(template string, vars map[string]string) (string, error) {
	var missing string
	out := variableRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := vars[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})
	if missing != "" {
		return "", &UndefinedVariableError{Name: missing}
	}
	return out, nil
}
