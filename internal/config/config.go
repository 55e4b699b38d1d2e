package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/dotjson/internal/output"
)

var (
	ErrNoArguments     = errors.New("no command provided")
	ErrHelp            = errors.New("help requested")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingPath     = errors.New("-path is required")
	ErrMissingValue    = errors.New("-value is required")
	ErrMissingExpr     = errors.New("-expr is required")
	ErrMissingPatch    = errors.New("-patch is required")
	ErrTooManyInputs   = errors.New("at most one input file may be given")
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidRate     = errors.New("rate must not be negative")
	ErrInvalidLogLevel = errors.New("log level must be one of: debug, info, warn, error")
)

// Command names a subcommand.
type Command string

const (
	CommandGet      Command = "get"
	CommandSet      Command = "set"
	CommandRemove   Command = "remove"
	CommandContains Command = "contains"
	CommandFlatten  Command = "flatten"
	CommandQuery    Command = "query"
	CommandPatch    Command = "patch"
	CommandStream   Command = "stream"
)

// Commands lists every subcommand in usage order.
func Commands() []Command {
	return []Command{
		CommandGet, CommandSet, CommandRemove, CommandContains,
		CommandFlatten, CommandQuery, CommandPatch, CommandStream,
	}
}

// Framing is the byte framing of an encoded stream.
type Framing struct {
	Prefix    string
	Separator string
	Suffix    string
}

// DefaultFraming is a JSON array.
var DefaultFraming = Framing{Prefix: "[", Separator: ",", Suffix: "]"}

// File is the optional YAML configuration file. Flags override its values.
type File struct {
	Format   string      `yaml:"format"`
	Timezone string      `yaml:"timezone"`
	Rate     float64     `yaml:"rate"`
	LogLevel string      `yaml:"log_level"`
	Stream   FileFraming `yaml:"stream"`
}

// FileFraming keeps unset fields nil so that an explicit "" is honoured.
type FileFraming struct {
	Prefix    *string `yaml:"prefix"`
	Separator *string `yaml:"separator"`
	Suffix    *string `yaml:"suffix"`
}

// Config is the validated configuration of one invocation.
type Config struct {
	Command  Command
	Input    string // empty or "-" reads standard input
	Format   output.Format
	Location *time.Location
	LogLevel slog.Level

	Path      string
	Value     string
	Expr      string
	PatchFile string
	Merge     bool

	Sets      []string
	Removes   []string
	IDPath    string
	StampPath string
	Rate      float64
	Framing   Framing
}

// stringsFlag implements flag.Value for repeatable flags.
type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringsFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type flags struct {
	format     *string
	timezone   *string
	configFile *string
	verbose    *bool

	path      *string
	value     *string
	expr      *string
	patchFile *string
	merge     *bool

	sets      stringsFlag
	removes   stringsFlag
	idPath    *string
	stampPath *string
	rate      *float64
	prefix    *string
	separator *string
	suffix    *string
}

func newFlagSet(name string, cmd Command) (*flag.FlagSet, *flags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	f := &flags{
		format:     fs.String("format", "", "Output format: json, pretty, yaml or flat"),
		timezone:   fs.String("tz", "", "Time zone used to render timestamps (default UTC)"),
		configFile: fs.String("config", "", "Path to a YAML configuration file"),
		verbose:    fs.Bool("v", false, "Enable debug logging"),
	}

	switch cmd {
	case CommandGet, CommandRemove, CommandContains:
		f.path = fs.String("path", "", "Dot notation path")
	case CommandSet:
		f.path = fs.String("path", "", "Dot notation path")
		f.value = fs.String("value", "", "JSON value to store")
	case CommandQuery:
		f.expr = fs.String("expr", "", "JSONPath expression")
	case CommandPatch:
		f.patchFile = fs.String("patch", "", "Path to a JSON patch file")
		f.merge = fs.Bool("merge", false, "Treat the patch as an RFC 7386 merge patch")
	case CommandStream:
		fs.Var(&f.sets, "set", "Assign PATH=JSON in every document (repeatable)")
		fs.Var(&f.removes, "remove", "Remove PATH from every document (repeatable)")
		f.idPath = fs.String("id", "", "Assign a UUID at PATH when absent")
		f.stampPath = fs.String("stamp", "", "Store the processing time at PATH")
		f.rate = fs.Float64("rate", 0, "Documents per second (0 for unlimited)")
		f.prefix = fs.String("prefix", DefaultFraming.Prefix, "Bytes written before the first document")
		f.separator = fs.String("separator", DefaultFraming.Separator, "Bytes written between documents")
		f.suffix = fs.String("suffix", DefaultFraming.Suffix, "Bytes written after the last document")
	}

	return fs, f
}

// Parse parses "dotjson <command> [flags] [file]". Flags take precedence over
// the configuration file, which takes precedence over defaults.
func Parse(args []string) (*Config, error) {
	if len(args) < 2 {
		return nil, ErrNoArguments
	}

	name := args[1]
	switch name {
	case "help", "-h", "-help", "--help":
		return nil, ErrHelp
	}

	cmd := Command(name)
	if !slices.Contains(Commands(), cmd) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	fs, f := newFlagSet(args[0]+" "+name, cmd)
	if err := fs.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("parse arguments: %w", err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })

	var file File
	if *f.configFile != "" {
		loaded, err := LoadFile(*f.configFile)
		if err != nil {
			return nil, err
		}
		file = *loaded
	}

	positional := fs.Args()
	if len(positional) > 1 {
		return nil, fmt.Errorf("%w, got %d", ErrTooManyInputs, len(positional))
	}

	cfg := &Config{Command: cmd}
	if len(positional) == 1 {
		cfg.Input = positional[0]
	}

	var err error
	if cfg.Format, err = output.ParseFormat(pick(explicit["format"], *f.format, file.Format)); err != nil {
		return nil, err
	}
	if cfg.Location, err = loadLocation(pick(explicit["tz"], *f.timezone, file.Timezone)); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = parseLogLevel(file.LogLevel); err != nil {
		return nil, err
	}
	if *f.verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if err := f.apply(cfg, cmd, explicit, file); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *flags) apply(cfg *Config, cmd Command, explicit map[string]bool, file File) error {
	switch cmd {
	case CommandGet, CommandRemove, CommandContains:
		cfg.Path = *f.path
		if cfg.Path == "" {
			return ErrMissingPath
		}
	case CommandSet:
		cfg.Path, cfg.Value = *f.path, *f.value
		if cfg.Path == "" {
			return ErrMissingPath
		}
		if !explicit["value"] {
			return ErrMissingValue
		}
	case CommandQuery:
		cfg.Expr = *f.expr
		if cfg.Expr == "" {
			return ErrMissingExpr
		}
	case CommandPatch:
		cfg.PatchFile, cfg.Merge = *f.patchFile, *f.merge
		if cfg.PatchFile == "" {
			return ErrMissingPatch
		}
	case CommandStream:
		cfg.Sets = f.sets
		cfg.Removes = f.removes
		cfg.IDPath = *f.idPath
		cfg.StampPath = *f.stampPath

		cfg.Rate = file.Rate
		if explicit["rate"] {
			cfg.Rate = *f.rate
		}
		if cfg.Rate < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidRate, cfg.Rate)
		}

		cfg.Framing = Framing{
			Prefix:    pickFraming(explicit["prefix"], *f.prefix, file.Stream.Prefix),
			Separator: pickFraming(explicit["separator"], *f.separator, file.Stream.Separator),
			Suffix:    pickFraming(explicit["suffix"], *f.suffix, file.Stream.Suffix),
		}
	}
	return nil
}

// LoadFile reads a YAML configuration file. Unknown keys are rejected.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file File
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return &file, nil
}

func pick(explicit bool, flagValue, fileValue string) string {
	if explicit || fileValue == "" {
		return flagValue
	}
	return fileValue
}

func pickFraming(explicit bool, flagValue string, fileValue *string) string {
	if explicit || fileValue == nil {
		return flagValue
	}
	return *fileValue
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

func parseLogLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w, got: %s", ErrInvalidLogLevel, name)
	}
	return level, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `dotjson - dot notation JSON documents and streams

Usage: dotjson <command> [options] [file]

Reads standard input when no file (or "-") is given.

Commands:
  get -path P                 Print the value at P
  set -path P -value JSON     Store JSON at P and print the document
  remove -path P              Remove the field at P and print the document
  contains -path P            Exit 0 when P exists, 1 otherwise
  flatten                     Print every leaf as path=value
  query -expr JSONPATH        Print the values selected by a JSONPath expression
  patch -patch FILE [-merge]  Apply an RFC 6902 (or RFC 7386 merge) patch
  stream [options]            Transform a JSON array of documents one at a time
  help                        Show this help message

Common options:
  -format F       Output format: json, pretty, yaml, flat (default: json)
  -tz ZONE        Time zone used to render timestamps (default: UTC)
  -config FILE    YAML configuration file
  -v              Enable debug logging

Stream options:
  -set P=JSON     Assign JSON at P in every document (repeatable)
  -remove P       Remove P from every document (repeatable)
  -id P           Assign a UUID at P when absent
  -stamp P        Store the processing time at P
  -rate N         Documents per second (0 for unlimited)
  -prefix S       Bytes before the first document (default: "[")
  -separator S    Bytes between documents (default: ",")
  -suffix S       Bytes after the last document (default: "]")

Configuration file:
  format: pretty
  timezone: America/Chicago
  rate: 100
  log_level: info
  stream:
    prefix: ""
    separator: "\n"
    suffix: "\n"

Examples:
  dotjson get -path engine.hp car.json
  dotjson set -path features.0 -value '"T-Tops"' car.json
  dotjson query -expr '$..hp' car.json
  cat cars.json | dotjson stream -id meta.id -stamp meta.seen -rate 50`
}
