package eval

import (
	"regexp"
	"strings"
)

// fencedBlock matches the first fenced code block, with or without a
// language tag.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9]*[ \t]*\n(.*?)```")

// ExtractCode returns the body of the first fenced code block in the
// model output, or the whole trimmed output when no fence is present.
func ExtractCode(output string) string {
	if m := fencedBlock.FindStringSubmatch(output); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(output)
}
