package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Result reports whether a step's data is complete. Error carries a
// user-facing message when Valid is false and is empty otherwise.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// OK returns a passing result.
func OK() Result {
	return Result{Valid: true}
}

// Fail returns a failing result carrying message.
func Fail(message string) Result {
	return Result{Valid: false, Error: strings.TrimSpace(message)}
}

// All returns the first failing result, or OK when every result passes.
func All(results ...Result) Result {
	for _, result := range results {
		if !result.Valid {
			return result
		}
	}
	return OK()
}

// Bounds is an inclusive cardinality range. Max == 0 means unbounded.
type Bounds struct {
	Min int `json:"min" mapstructure:"min"`
	Max int `json:"max" mapstructure:"max"`
}

// Contains reports whether n falls inside the range.
func (b Bounds) Contains(n int) bool {
	if n < b.Min {
		return false
	}
	return b.Max <= 0 || n <= b.Max
}

// Unbounded reports whether the upper bound is open.
func (b Bounds) Unbounded() bool {
	return b.Max <= 0
}

// RequireText passes when value has non-whitespace content.
func RequireText(value, message string) Result {
	if strings.TrimSpace(value) == "" {
		return Fail(message)
	}
	return OK()
}

// MinLength passes when the trimmed value is strictly longer than min runes.
func MinLength(value string, min int, message string) Result {
	if len([]rune(strings.TrimSpace(value))) <= min {
		return Fail(message)
	}
	return OK()
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email passes when value looks like an address (local@domain.tld).
func Email(value, message string) Result {
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return Fail(message)
	}
	return OK()
}

// SelectionCount checks the number of selected options against bounds. noun
// is the singular option name ("style", "category").
func SelectionCount(n int, bounds Bounds, noun string) Result {
	if n < bounds.Min {
		return Fail(fmt.Sprintf("Please select at least %s", quantity(bounds.Min, noun)))
	}
	if !bounds.Unbounded() && n > bounds.Max {
		return Fail(fmt.Sprintf("Please select at most %s", quantity(bounds.Max, noun)))
	}
	return OK()
}

// FileCount checks the number of accepted files against bounds.
func FileCount(n int, bounds Bounds, noun string) Result {
	if n < bounds.Min {
		return Fail(fmt.Sprintf("Please upload at least %s", quantity(bounds.Min, noun)))
	}
	if !bounds.Unbounded() && n > bounds.Max {
		return Fail(MaxFilesMessage(bounds.Max, noun))
	}
	return OK()
}

// MaxFilesMessage is the message used when a file list is full.
func MaxFilesMessage(max int, noun string) string {
	return fmt.Sprintf("Maximum %d %s allowed", max, Plural(noun))
}

// Plural appends an "s" to noun unless it already ends with one.
func Plural(noun string) string {
	switch {
	case noun == "":
		return ""
	case strings.HasSuffix(noun, "y") && !strings.HasSuffix(noun, "ey"):
		return strings.TrimSuffix(noun, "y") + "ies"
	case strings.HasSuffix(noun, "s"):
		return noun
	default:
		return noun + "s"
	}
}

func quantity(n int, noun string) string {
	if n == 1 {
		return "one " + noun
	}
	return fmt.Sprintf("%d %s", n, Plural(noun))
}
