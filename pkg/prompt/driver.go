package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-memora/pkg/validation"
)

// TextPrompt asks for a free-form answer. Secret hides the input; Multiline
// opens an editor-style prompt for longer text such as a vision statement.
type TextPrompt struct {
	Label     string
	Value     string
	Help      string
	Secret    bool
	Multiline bool
}

// ChoicePrompt asks for exactly one of Options.
type ChoicePrompt struct {
	Label   string
	Options []string
	Default int
}

// PickPrompt asks for a subset of Options. Selected holds the indices already
// chosen; Bounds caps how many may be picked (Max 0 is unbounded).
type PickPrompt struct {
	Label    string
	Options  []string
	Selected []int
	Bounds   validation.Bounds
	Help     string
}

// PathPrompt asks for one or more local file paths, comma separated.
type PathPrompt struct {
	Label string
	Help  string
}

// Driver is the terminal seen by pages and the runner.
type Driver interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Choose(ctx context.Context, p ChoicePrompt) (int, error)
	Pick(ctx context.Context, p PickPrompt) ([]int, error)
	Paths(ctx context.Context, p PathPrompt) ([]string, error)
	Show(ctx context.Context, msg string) error
}

// Screen is what a page draws on: the driver plus the styles its messages
// are rendered with.
type Screen struct {
	Driver
	Styles Styles
}

// Problem shows msg as a user-facing error line.
func (s Screen) Problem(ctx context.Context, msg string) error {
	return s.Show(ctx, s.Styles.Problem(msg))
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the interactive terminal driver. Messages go to
// out, or stdout when nil.
func NewSurveyDriver(out io.Writer) Driver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Text(ctx context.Context, p TextPrompt) (string, error) {
	var q survey.Prompt
	switch {
	case p.Secret:
		q = &survey.Password{Message: p.Label, Help: p.Help}
	case p.Multiline:
		q = &survey.Multiline{Message: p.Label, Default: p.Value, Help: p.Help}
	default:
		q = &survey.Input{Message: p.Label, Default: p.Value, Help: p.Help}
	}
	return ask[string](ctx, q)
}

func (d *surveyDriver) Choose(ctx context.Context, p ChoicePrompt) (int, error) {
	q := &survey.Select{Message: p.Label, Options: p.Options}
	if p.Default > 0 && p.Default < len(p.Options) {
		q.Default = p.Default
	}
	return ask[int](ctx, q)
}

func (d *surveyDriver) Pick(ctx context.Context, p PickPrompt) ([]int, error) {
	q := &survey.MultiSelect{
		Message:  p.Label + " (" + boundsHint(p.Bounds) + ")",
		Options:  p.Options,
		Help:     p.Help,
		PageSize: len(p.Options),
	}
	if len(p.Selected) > 0 {
		q.Default = p.Selected
	}
	var opts []survey.AskOpt
	if p.Bounds.Max > 0 {
		opts = append(opts, survey.WithValidator(survey.MaxItems(p.Bounds.Max)))
	}
	return ask[[]int](ctx, q, opts...)
}

func (d *surveyDriver) Paths(ctx context.Context, p PathPrompt) ([]string, error) {
	q := &survey.Input{Message: p.Label, Help: p.Help, Suggest: CompletePaths}
	raw, err := ask[string](ctx, q)
	if err != nil {
		return nil, err
	}
	return SplitPaths(raw), nil
}

func (d *surveyDriver) Show(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func ask[V any](ctx context.Context, q survey.Prompt, opts ...survey.AskOpt) (V, error) {
	var answer V
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	if err := survey.AskOne(q, &answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return answer, ErrAborted
		}
		return answer, err
	}
	return answer, nil
}

// boundsHint describes how many options may be picked.
func boundsHint(b validation.Bounds) string {
	switch {
	case b.Max > 0 && b.Min == b.Max:
		return fmt.Sprintf("pick %d", b.Max)
	case b.Max > 0 && b.Min > 0:
		return fmt.Sprintf("pick %d to %d", b.Min, b.Max)
	case b.Max > 0:
		return fmt.Sprintf("up to %d", b.Max)
	case b.Min > 0:
		return fmt.Sprintf("at least %d", b.Min)
	default:
		return "any"
	}
}

// SplitPaths splits a comma separated answer into trimmed, non-empty paths.
func SplitPaths(raw string) []string {
	var out []string
	for _, path := range strings.Split(raw, ",") {
		if path = strings.TrimSpace(path); path != "" {
			out = append(out, path)
		}
	}
	return out
}

// CompletePaths completes the last path of a comma separated answer against
// the filesystem. Directories keep a trailing separator so completion can
// continue into them.
func CompletePaths(answer string) []string {
	head, last := "", answer
	if idx := strings.LastIndex(answer, ","); idx >= 0 {
		head, last = answer[:idx+1]+" ", strings.TrimSpace(answer[idx+1:])
	}

	matches, err := filepath.Glob(last + "*")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), ".") && !strings.HasPrefix(filepath.Base(last), ".") {
			continue
		}
		if info, err := os.Stat(match); err == nil && info.IsDir() {
			match += string(filepath.Separator)
		}
		out = append(out, head+match)
	}
	return out
}
