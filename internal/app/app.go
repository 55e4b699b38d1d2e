// Package app executes dotjson subcommands against files or standard input.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/jacoelho/dotjson/internal/config"
	"github.com/jacoelho/dotjson/internal/doc"
	"github.com/jacoelho/dotjson/internal/exit"
	"github.com/jacoelho/dotjson/internal/output"
)

// ErrAbsent is reported by contains when the path does not exist.
var ErrAbsent = errors.New("path not found")

// App runs one configured command.
type App struct {
	config    *config.Config
	coercer   doc.Coercer
	logger    *slog.Logger
	input     io.Reader
	output    io.Writer
	errOutput io.Writer
}

// New returns an App reading standard input and writing standard output.
// A nil logger selects slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		config:    cfg,
		coercer:   doc.NewCoercer(doc.WithLocation(cfg.Location)),
		logger:    logger,
		input:     os.Stdin,
		output:    os.Stdout,
		errOutput: os.Stderr,
	}
}

// SetInput replaces standard input.
func (a *App) SetInput(r io.Reader) {
	a.input = r
}

func (a *App) SetOutput(w io.Writer) {
	a.output = w
}

func (a *App) SetErrorOutput(w io.Writer) {
	a.errOutput = w
}

// Run executes the command and returns the process exit code.
func (a *App) Run(ctx context.Context) int {
	result := a.run(ctx)
	if result == nil {
		return exit.CodeOK
	}
	if result.Output == nil {
		result.Output = a.errOutput
	}
	result.Print()
	return result.ExitCode
}

func (a *App) run(ctx context.Context) *exit.Result {
	a.logger.Debug("running command", "command", a.config.Command, "input", a.inputName())

	var err error
	switch a.config.Command {
	case config.CommandStream:
		err = a.runStream(ctx)
	case config.CommandContains:
		err = a.runContains()
	default:
		err = a.runDocument()
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAbsent):
		return exit.Silent(exit.CodeError)
	default:
		return &exit.Result{ExitCode: exit.CodeError, Message: fmt.Sprintf("Error: %v\n", err)}
	}
}

func (a *App) runDocument() error {
	d, err := a.readDocument()
	if err != nil {
		return err
	}

	var result *doc.Node
	switch a.config.Command {
	case config.CommandGet:
		result, err = d.Get(a.config.Path)

	case config.CommandSet:
		var value *doc.Node
		value, err = a.coercer.Unmarshal([]byte(a.config.Value))
		if err != nil {
			return fmt.Errorf("parse -value: %w", err)
		}
		err = d.Set(a.config.Path, value)
		result = d.Root()

	case config.CommandRemove:
		var removed bool
		removed, err = d.Remove(a.config.Path)
		a.logger.Debug("remove", "path", a.config.Path, "removed", removed)
		result = d.Root()

	case config.CommandFlatten:
		result, err = flatten(d)

	case config.CommandQuery:
		var matches []*doc.Node
		matches, err = d.Query(a.config.Expr)
		result = doc.NewArray(matches...)

	case config.CommandPatch:
		result, err = a.patch(d.Root())

	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownCommand, a.config.Command)
	}
	if err != nil {
		return err
	}

	return output.Write(a.output, a.config.Format, result, a.coercer)
}

func (a *App) runContains() error {
	d, err := a.readDocument()
	if err != nil {
		return err
	}

	ok, err := d.Contains(a.config.Path)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.output, ok)
	if !ok {
		return ErrAbsent
	}
	return nil
}

func (a *App) patch(root *doc.Node) (*doc.Node, error) {
	data, err := os.ReadFile(a.config.PatchFile)
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}
	if a.config.Merge {
		return a.coercer.MergePatch(root, data)
	}
	return a.coercer.Patch(root, data)
}

// flatten renders the leaves as an object keyed by dotted path.
func flatten(d *doc.Document) (*doc.Node, error) {
	leaves, err := d.Flatten()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(leaves))
	for path := range leaves {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	out := doc.NewObject()
	for _, path := range paths {
		if err := out.SetField(path, leaves[path]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *App) readDocument() (*doc.Document, error) {
	r, err := a.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.inputName(), err)
	}
	d, err := doc.Parse(data, a.coercer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.inputName(), err)
	}
	return d, nil
}

func (a *App) open() (io.ReadCloser, error) {
	if a.readsStdin() {
		return io.NopCloser(a.input), nil
	}
	f, err := os.Open(a.config.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func (a *App) readsStdin() bool {
	return a.config.Input == "" || a.config.Input == "-"
}

func (a *App) inputName() string {
	if a.readsStdin() {
		return "stdin"
	}
	return a.config.Input
}
