package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"testing"
	"testing/iotest"

	"github.com/jacoelho/dotjson/internal/doc"
)

func TestJSONArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []any
		opts  []Option
		want  string
	}{
		{
			name:  "empty source",
			input: nil,
			want:  "[]",
		},
		{
			name:  "single element",
			input: []any{map[string]any{"make": "Ford"}},
			want:  `[{"make":"Ford"}]`,
		},
		{
			name:  "several elements",
			input: []any{1, "two", nil, []int{3}},
			want:  `[1,"two",null,[3]]`,
		},
		{
			name:  "custom framing",
			input: []any{1, 2},
			opts:  []Option{WithPrefix("{\"items\":["), WithSeparator(",\n"), WithSuffix("]}")},
			want:  "{\"items\":[1,\n2]}",
		},
		{
			name:  "empty source with custom framing",
			input: nil,
			opts:  []Option{WithPrefix("<"), WithSuffix(">")},
			want:  "<>",
		},
		{
			name:  "line delimited",
			input: []any{1, 2},
			opts:  []Option{WithPrefix(""), WithSeparator("\n"), WithSuffix("\n")},
			want:  "1\n2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc := JSONArray(slices.Values(tt.input), tt.opts...)
			got, err := io.ReadAll(enc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadAll() = %q, want %q", got, tt.want)
			}
			if enc.Count() != len(tt.input) {
				t.Errorf("Count() = %d, want %d", enc.Count(), len(tt.input))
			}
		})
	}
}

func TestEncoderSmallReads(t *testing.T) {
	t.Parallel()

	enc := StringArray(slices.Values([]string{"Electric Seats", "T-Tops"}))
	got, err := io.ReadAll(iotest.OneByteReader(enc))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if want := `["Electric Seats","T-Tops"]`; string(got) != want {
		t.Errorf("ReadAll() = %s, want %s", got, want)
	}
}

func TestStringArrayEscapes(t *testing.T) {
	t.Parallel()

	enc := StringArray(slices.Values([]string{`say "hi"`, "tab\there", `back\slash`}))
	got, err := io.ReadAll(enc)
	if err != nil {
		t.Fatal(err)
	}
	want := `["say \"hi\"","tab\there","back\\slash"]`
	if string(got) != want {
		t.Errorf("ReadAll() = %s, want %s", got, want)
	}
}

func TestRawArray(t *testing.T) {
	t.Parallel()

	enc := RawArray(slices.Values([][]byte{[]byte(`{"a":1}`), []byte(`[true]`)}))
	got, err := io.ReadAll(enc)
	if err != nil {
		t.Fatal(err)
	}
	if want := `[{"a":1},[true]]`; string(got) != want {
		t.Errorf("ReadAll() = %s, want %s", got, want)
	}
}

func TestEncoderFailureIsSticky(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	marshal := func(i int) ([]byte, error) {
		if i == 3 {
			return nil, boom
		}
		return []byte(fmt.Sprint(i)), nil
	}

	enc := NewEncoder(slices.Values([]int{1, 2, 3, 4}), marshal)
	got, err := io.ReadAll(enc)
	if !errors.Is(err, ErrEncode) || !errors.Is(err, boom) {
		t.Fatalf("ReadAll() error = %v, want ErrEncode wrapping boom", err)
	}
	if want := "[1,2,"; string(got) != want {
		t.Errorf("ReadAll() = %q before failure, want %q", got, want)
	}

	buf := make([]byte, 8)
	for range 2 {
		if _, err := enc.Read(buf); !errors.Is(err, ErrEncode) {
			t.Errorf("Read() after failure error = %v, want ErrEncode", err)
		}
	}
}

func TestEncoderSourceErrorOmitsSuffix(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	marshal := func(i int) ([]byte, error) { return []byte(fmt.Sprint(i)), nil }

	tests := []struct {
		name string
		src  []int
		want string
	}{
		{name: "after elements", src: []int{1, 2}, want: "[1,2"},
		{name: "before any element", want: "["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := func(yield func(int, error) bool) {
				for _, v := range tt.src {
					if !yield(v, nil) {
						return
					}
				}
				yield(0, boom)
			}

			enc := NewEncoder2(iter.Seq2[int, error](src), marshal)
			got, err := io.ReadAll(enc)
			if !errors.Is(err, boom) {
				t.Fatalf("ReadAll() error = %v, want boom", err)
			}
			if errors.Is(err, ErrEncode) {
				t.Errorf("ReadAll() error = %v, want the source error unwrapped", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadAll() = %q, want %q", got, tt.want)
			}
			if enc.Count() != len(tt.src) {
				t.Errorf("Count() = %d, want %d", enc.Count(), len(tt.src))
			}
			if _, err := enc.Read(make([]byte, 4)); !errors.Is(err, boom) {
				t.Errorf("Read() after failure error = %v, want boom", err)
			}
		})
	}
}

func TestRawArrayInvalidElement(t *testing.T) {
	t.Parallel()

	enc := RawArray(slices.Values([][]byte{[]byte(`{"a":`)}))
	if _, err := io.ReadAll(enc); !errors.Is(err, ErrEncode) {
		t.Errorf("ReadAll() error = %v, want ErrEncode", err)
	}
}

func TestEncoderIsLazy(t *testing.T) {
	t.Parallel()

	pulled := 0
	src := func(yield func(int) bool) {
		for i := range 100 {
			pulled++
			if !yield(i) {
				return
			}
		}
	}

	enc := JSONArray(iter.Seq[int](src))
	buf := make([]byte, 3)
	if _, err := io.ReadFull(enc, buf); err != nil {
		t.Fatal(err)
	}
	if pulled > 3 {
		t.Errorf("pulled %d elements for 3 bytes, want at most 3", pulled)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := enc.Read(buf); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after Close error = %v, want ErrClosed", err)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 2, 10} {
		t.Run(fmt.Sprintf("%d documents", n), func(t *testing.T) {
			t.Parallel()

			c := doc.DefaultCoercer()
			docs := make([]*doc.Node, n)
			for i := range docs {
				docs[i] = c.Coerce(map[string]any{
					"id":    i,
					"date":  "20201202T130522Z",
					"parts": []any{"a", map[string]any{"b": i}},
				})
			}

			enc := NewEncoder(slices.Values(docs), c.Marshal)
			dec, err := NewDecoder(enc)
			if err != nil {
				t.Fatalf("NewDecoder() error = %v", err)
			}

			for i := range n {
				if !dec.HasNext() {
					t.Fatalf("HasNext() = false at element %d", i)
				}
				got, err := dec.Next()
				if err != nil {
					t.Fatalf("Next() error = %v", err)
				}
				if !got.Equal(docs[i]) {
					t.Errorf("element %d = %v, want %v", i, got, docs[i])
				}
			}

			if dec.HasNext() {
				t.Error("HasNext() = true after last element")
			}
			if _, err := dec.Next(); err != io.EOF {
				t.Errorf("Next() at end error = %v, want io.EOF", err)
			}
		})
	}
}
