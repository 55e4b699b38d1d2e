package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/jacoelho/dotjson/internal/config"
)

const car = `{
	"date": "20201202T130522Z",
	"make": "Pontiac",
	"model": "Trans Am",
	"engine": {"cylinders": 8, "hp": 305},
	"color": "black",
	"features": ["Electric Seats", "Upgraded Radio", "T-Tops"]
}`

type runResult struct {
	code   int
	stdout string
	stderr string
}

func runApp(t *testing.T, ctx context.Context, stdin string, args ...string) runResult {
	t.Helper()

	cfg, err := config.Parse(append([]string{"dotjson"}, args...))
	if err != nil {
		t.Fatalf("config.Parse(%v) error = %v", args, err)
	}

	var stdout, stderr bytes.Buffer
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.SetInput(strings.NewReader(stdin))
	a.SetOutput(&stdout)
	a.SetErrorOutput(&stderr)

	code := a.Run(ctx)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDocumentCommands(t *testing.T) {
	t.Parallel()

	patchFile := writeTemp(t, "patch.json", `[{"op":"replace","path":"/engine/hp","value":350}]`)
	mergeFile := writeTemp(t, "merge.json", `{"color":null,"date":null,"model":null,"features":null,"make":"Ford"}`)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "get scalar",
			args:       []string{"get", "-path", "engine.hp"},
			wantStdout: "305\n",
		},
		{
			name:       "get array element",
			args:       []string{"get", "-path", "features.0"},
			wantStdout: "\"Electric Seats\"\n",
		},
		{
			name:       "get date in zone",
			args:       []string{"get", "-path", "date", "-tz", "America/Chicago"},
			wantStdout: "\"2020-12-02T07:05:22-0600\"\n",
		},
		{
			name:       "get missing",
			args:       []string{"get", "-path", "wheels"},
			wantCode:   1,
			wantStderr: "not found",
		},
		{
			name:       "set appends",
			args:       []string{"set", "-path", "features.3", "-value", `"Sunroof"`, "-format", "flat"},
			wantStdout: "features=[\"Electric Seats\",\"Upgraded Radio\",\"T-Tops\",\"Sunroof\"]",
		},
		{
			name:       "set out of bounds",
			args:       []string{"set", "-path", "features.5", "-value", `"X"`},
			wantCode:   1,
			wantStderr: "out of bounds",
		},
		{
			name:       "set invalid value",
			args:       []string{"set", "-path", "color", "-value", `red`},
			wantCode:   1,
			wantStderr: "parse -value",
		},
		{
			name:       "remove",
			args:       []string{"remove", "-path", "engine.cylinders", "-format", "flat"},
			wantStdout: "engine.hp=305\n",
		},
		{
			name:       "flatten",
			args:       []string{"flatten"},
			wantStdout: `"engine.cylinders":8,"engine.hp":305,`,
		},
		{
			name:       "query",
			args:       []string{"query", "-expr", "$.features[*]"},
			wantStdout: `["Electric Seats","Upgraded Radio","T-Tops"]` + "\n",
		},
		{
			name:       "invalid query",
			args:       []string{"query", "-expr", "features"},
			wantCode:   1,
			wantStderr: "invalid",
		},
		{
			name:       "patch",
			args:       []string{"patch", "-patch", patchFile, "-format", "flat"},
			wantStdout: "engine.hp=350\n",
		},
		{
			name:       "merge patch",
			args:       []string{"patch", "-patch", mergeFile, "-merge"},
			wantStdout: `"make":"Ford"`,
		},
		{
			name:       "yaml",
			args:       []string{"get", "-path", "engine", "-format", "yaml"},
			wantStdout: "cylinders: 8\nhp: 305\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runApp(t, context.Background(), car, tt.args...)
			if got.code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr %q)", got.code, tt.wantCode, got.stderr)
			}
			if !strings.Contains(got.stdout, tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", got.stdout, tt.wantStdout)
			}
			if tt.wantStderr == "" && got.stderr != "" {
				t.Errorf("stderr = %q, want empty", got.stderr)
			}
			if !strings.Contains(got.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", got.stderr, tt.wantStderr)
			}
		})
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	present := runApp(t, context.Background(), car, "contains", "-path", "engine.hp")
	if present.code != 0 || present.stdout != "true\n" {
		t.Errorf("contains engine.hp = %+v, want exit 0 and true", present)
	}

	absent := runApp(t, context.Background(), car, "contains", "-path", "features.9")
	if absent.code != 1 || absent.stdout != "false\n" || absent.stderr != "" {
		t.Errorf("contains features.9 = %+v, want exit 1, false and no error", absent)
	}

	invalid := runApp(t, context.Background(), car, "contains", "-path", "make.first")
	if invalid.code != 1 || !strings.Contains(invalid.stderr, "Error:") {
		t.Errorf("contains make.first = %+v, want exit 1 with an error", invalid)
	}
}

func TestInputFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "car.json", car)
	got := runApp(t, context.Background(), "", "get", "-path", "make", path)
	if got.code != 0 || got.stdout != "\"Pontiac\"\n" {
		t.Errorf("get make from file = %+v", got)
	}

	missing := runApp(t, context.Background(), "", "get", "-path", "make", filepath.Join(t.TempDir(), "nope.json"))
	if missing.code != 1 || !strings.Contains(missing.stderr, "open input") {
		t.Errorf("get from missing file = %+v", missing)
	}
}

func TestMalformedDocument(t *testing.T) {
	t.Parallel()

	got := runApp(t, context.Background(), `{"make":`, "get", "-path", "make")
	if got.code != 1 || !strings.Contains(got.stderr, "malformed") {
		t.Errorf("get on malformed input = %+v", got)
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	input := `[{"make":"Ford","color":"blue"},{"make":"Dodge","date":{"$date":"20201202T130522Z"}}]`

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "passthrough",
			args: []string{"stream"},
			want: `[{"make":"Ford","color":"blue"},{"make":"Dodge","date":"2020-12-02T13:05:22Z"}]`,
		},
		{
			name: "set and remove",
			args: []string{"stream", "-set", "seen=true", "-remove", "color"},
			want: `[{"make":"Ford","seen":true},{"make":"Dodge","date":"2020-12-02T13:05:22Z","seen":true}]`,
		},
		{
			name: "line delimited",
			args: []string{"stream", "-prefix", "", "-separator", "\n", "-suffix", "\n", "-remove", "date", "-remove", "color"},
			want: "{\"make\":\"Ford\"}\n{\"make\":\"Dodge\"}\n",
		},
		{
			name: "zone",
			args: []string{"stream", "-tz", "America/Chicago", "-remove", "color"},
			want: `[{"make":"Ford"},{"make":"Dodge","date":"2020-12-02T07:05:22-0600"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runApp(t, context.Background(), input, tt.args...)
			if got.code != 0 {
				t.Fatalf("exit code = %d, stderr = %q", got.code, got.stderr)
			}
			if got.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", got.stdout, tt.want)
			}
		})
	}
}

func TestStreamEmptyInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "[]"} {
		got := runApp(t, context.Background(), input, "stream")
		if got.code != 0 || got.stdout != "[]" {
			t.Errorf("stream of %q = %+v, want []", input, got)
		}
	}
}

func TestStreamAssignsIDs(t *testing.T) {
	t.Parallel()

	got := runApp(t, context.Background(), `[{"n":1},{"n":2,"id":"keep"}]`, "stream", "-id", "id")
	if got.code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", got.code, got.stderr)
	}

	var docs []map[string]any
	if err := json.Unmarshal([]byte(got.stdout), &docs); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if _, err := uuid.Parse(docs[0]["id"].(string)); err != nil {
		t.Errorf("first id %v is not a UUID", docs[0]["id"])
	}
	if docs[1]["id"] != "keep" {
		t.Errorf("second id = %v, want keep", docs[1]["id"])
	}
}

func TestStreamErrors(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name       string
		ctx        context.Context
		input      string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{
			name:       "malformed element",
			ctx:        context.Background(),
			input:      `[{"make":"Ford"},{"make":]`,
			args:       []string{"stream"},
			wantStdout: `[{"make":"Ford"}`,
			wantStderr: "decode",
		},
		{
			name:       "malformed start",
			ctx:        context.Background(),
			input:      `]`,
			args:       []string{"stream"},
			wantStderr: "decode",
		},
		{
			name:       "transform failure",
			ctx:        context.Background(),
			input:      `[{"make":"Ford"},[1]]`,
			args:       []string{"stream", "-set", "seen=true"},
			wantStdout: `[{"make":"Ford","seen":true}`,
			wantStderr: "document 1",
		},
		{
			name:       "invalid assignment",
			ctx:        context.Background(),
			input:      `[]`,
			args:       []string{"stream", "-set", "seen"},
			wantStderr: "invalid assignment",
		},
		{
			name:       "cancelled",
			ctx:        cancelled,
			input:      `[{"n":1},{"n":2}]`,
			args:       []string{"stream", "-rate", "1"},
			wantStdout: "[",
			wantStderr: "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runApp(t, tt.ctx, tt.input, tt.args...)
			if got.code != 1 {
				t.Fatalf("exit code = %d, want 1 (stdout %q)", got.code, got.stdout)
			}
			if got.stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", got.stdout, tt.wantStdout)
			}
			if !strings.Contains(got.stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", got.stderr, tt.wantStderr)
			}
		})
	}
}
