package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rabbithole/internal/core/history"
	perr "rabbithole/internal/platform/errors"
	kit "rabbithole/internal/platform/testkit"
)

func readString(t *testing.T, input string, opts Options) ([]history.RawRow, Stats, error) {
	t.Helper()
	return New(strings.NewReader(input), "test", opts).ReadAll(context.Background())
}

func TestReadAllArray(t *testing.T) {
	input := `[
		{"url": "https://github.com/golang/go", "title": "golang/go", "timestamp": 1700000000, "visit_count": 3},
		{"url": "https://news.ycombinator.com", "timestamp": "2023-11-14T22:13:20Z"}
	]`
	rows, st, err := readString(t, input, Options{})
	kit.MustNoErr(t, err)

	if len(rows) != 2 || st.Rows != 2 || st.Malformed != 0 {
		t.Fatalf("rows=%d stats=%+v", len(rows), st)
	}
	if rows[0].URL != "https://github.com/golang/go" || rows[0].VisitCount != 3 {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	ts, err := rows[1].Timestamp.Resolve(history.EpochAuto)
	kit.MustNoErr(t, err)
	if !ts.Equal(time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)) {
		t.Fatalf("row 1 timestamp = %v", ts)
	}
}

func TestReadAllNDJSON(t *testing.T) {
	input := strings.Join([]string{
		`{"url": "https://go.dev/doc", "timestamp": 1700000000}`,
		``,
		`   `,
		`{"url": "https://go.dev/blog", "timestamp": 1700000060, "visit_count": 2}`,
		`not json at all`,
		`null`,
		`{"url": "https://go.dev/talks", "timestamp": `,
		`{"url": "https://go.dev/tour", "timestamp": 1700000120}`,
	}, "\n")

	rows, st, err := readString(t, input, Options{})
	kit.MustNoErr(t, err)

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if st.Lines != 8 || st.Rows != 3 || st.Malformed != 3 {
		t.Fatalf("stats = %+v", st)
	}
	if rows[2].URL != "https://go.dev/tour" {
		t.Fatalf("row 2 = %+v", rows[2])
	}
}

func TestReadAllEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t\n"} {
		rows, st, err := readString(t, input, Options{})
		kit.MustNoErr(t, err)
		if len(rows) != 0 || st.Rows != 0 {
			t.Fatalf("empty input %q gave rows=%d stats=%+v", input, len(rows), st)
		}
	}
}

func TestReadAllRejectsForeignShape(t *testing.T) {
	for _, input := range []string{`42`, `"a string"`, `true`} {
		_, _, err := readString(t, input, Options{})
		kit.MustErrCode(t, err, perr.CodeInvalidInput)
	}
}

func TestReadAllBadArray(t *testing.T) {
	_, _, err := readString(t, `[{"url": "https://go.dev"},`, Options{})
	kit.MustErrCode(t, err, perr.CodeJSON)
}

func TestReadAllOversizedLine(t *testing.T) {
	long := `{"url": "https://example.com/` + strings.Repeat("x", 200) + `"}`
	_, _, err := readString(t, long, Options{MaxLine: 32})
	kit.MustErrCode(t, err, perr.CodeInvalidInput)
}

func TestReadAllHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := `{"url": "https://go.dev", "timestamp": 1700000000}`
	_, _, err := New(strings.NewReader(input), "test", Options{}).ReadAll(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.ndjson"), Options{})
	kit.MustErrCode(t, err, perr.CodeNotFound)
}

func TestOpenAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.ndjson")
	content := `{"url": "https://sqlite.org", "timestamp": 1700000000}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rd, err := Open(path, Options{})
	kit.MustNoErr(t, err)
	defer func() { _ = rd.Close() }()

	rows, st, err := rd.ReadAll(context.Background())
	kit.MustNoErr(t, err)
	if len(rows) != 1 || rows[0].URL != "https://sqlite.org" || st.Rows != 1 {
		t.Fatalf("rows=%+v stats=%+v", rows, st)
	}
	kit.MustNoErr(t, rd.Close())
}
