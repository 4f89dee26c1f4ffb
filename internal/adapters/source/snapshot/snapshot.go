// Package snapshot reads history rows straight out of local browser SQLite
// files. Callers hand in a path; profile discovery and lock handling are
// theirs (copy the database first if the browser is running)
package snapshot

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rabbithole/internal/core/history"
	perr "rabbithole/internal/platform/errors"
	str "rabbithole/internal/platform/strings"
)

// Browser names a snapshot schema family
type Browser string

const (
	// BrowserAuto probes the schema
	BrowserAuto Browser = "auto"
	// BrowserChrome reads the urls table, WebKit microseconds
	BrowserChrome Browser = "chrome"
	// BrowserFirefox reads moz_places, unix microseconds
	BrowserFirefox Browser = "firefox"
	// BrowserSafari reads history_items joined to history_visits, Cocoa seconds
	BrowserSafari Browser = "safari"
)

// ParseBrowser validates a browser name; empty means auto
func ParseBrowser(s string) (Browser, error) {
	b := Browser(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case "":
		return BrowserAuto, nil
	case BrowserAuto, BrowserChrome, BrowserFirefox, BrowserSafari:
		return b, nil
	default:
		return "", perr.InvalidArgf("unknown browser %q", s)
	}
}

const chromeQuery = `
SELECT url, title, visit_count, last_visit_time
FROM urls
WHERE last_visit_time > ? AND hidden = 0
ORDER BY last_visit_time DESC
LIMIT ?`

const firefoxQuery = `
SELECT url, title, visit_count, last_visit_date
FROM moz_places
WHERE last_visit_date > ? AND hidden = 0 AND url NOT LIKE 'moz-extension://%'
ORDER BY last_visit_date DESC
LIMIT ?`

// the SQLite bare-column rule makes v.title come from the max-time visit row
const safariQuery = `
SELECT i.url, i.title, COUNT(v.id) AS visit_count, MAX(v.visit_time) AS last_visit_time
FROM history_items i
JOIN history_visits v ON v.history_item = i.id
WHERE v.visit_time > ?
GROUP BY i.id, i.url, i.title
ORDER BY last_visit_time DESC
LIMIT ?`

// Detect probes the snapshot schema and names the browser that wrote it
func Detect(ctx context.Context, path string) (Browser, error) {
	db, err := open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()
	return detect(ctx, db)
}

// Read pulls raw rows out of the snapshot at path. BrowserAuto probes the
// schema first. since bounds rows to visits strictly after it, zero means
// everything; limit keeps the most recent rows, 0 or less means all.
// Returns the rows and the epoch their timestamps are encoded in
func Read(ctx context.Context, path string, browser Browser, since time.Time, limit int) ([]history.RawRow, history.Epoch, error) {
	db, err := open(path)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = db.Close() }()

	if browser == "" || browser == BrowserAuto {
		if browser, err = detect(ctx, db); err != nil {
			return nil, "", err
		}
	}

	if limit <= 0 {
		limit = -1 // sqlite reads a negative limit as "no limit"
	}

	var (
		query string
		lower any
		epoch history.Epoch
	)
	switch browser {
	case BrowserChrome:
		query, lower, epoch = chromeQuery, history.WebKitMicros(since), history.EpochWebKit
	case BrowserFirefox:
		query, lower, epoch = firefoxQuery, unixMicros(since), history.EpochUnixMicro
	case BrowserSafari:
		query, lower, epoch = safariQuery, history.CocoaSeconds(since), history.EpochCocoa
	default:
		return nil, "", perr.InvalidArgf("unknown browser %q", browser)
	}

	rows, err := db.QueryContext(ctx, query, lower, limit)
	if err != nil {
		return nil, "", perr.Wrapf(err, perr.CodeSnapshot, "query %s snapshot", browser)
	}
	defer func() { _ = rows.Close() }()

	var out []history.RawRow
	for rows.Next() {
		var (
			url   string
			title sql.NullString
			count sql.NullInt64
			stamp sql.NullFloat64
		)
		if err := rows.Scan(&url, &title, &count, &stamp); err != nil {
			return nil, "", perr.Wrapf(err, perr.CodeSnapshot, "scan %s row", browser)
		}
		r := history.RawRow{
			URL:        url,
			Title:      str.EmptyToNil(title.String),
			VisitCount: int(count.Int64),
		}
		if stamp.Valid {
			r.Timestamp = history.NumericTimestamp(stamp.Float64)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, "", perr.Wrapf(err, perr.CodeSnapshot, "read %s rows", browser)
	}
	return out, epoch, nil
}

// open opens the snapshot read-only; immutable keeps sqlite from even trying
// to take locks on a file some browser may still hold
func open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("snapshot %s does not exist", path)
		}
		return nil, perr.Wrapf(err, perr.CodeSnapshot, "stat snapshot %s", path)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeSnapshot, "open snapshot %s", path)
	}
	return db, nil
}

func detect(ctx context.Context, db *sql.DB) (Browser, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return "", perr.Wrapf(err, perr.CodeSnapshot, "probe snapshot schema")
	}
	defer func() { _ = rows.Close() }()

	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", perr.Wrapf(err, perr.CodeSnapshot, "probe snapshot schema")
		}
		tables[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", perr.Wrapf(err, perr.CodeSnapshot, "probe snapshot schema")
	}

	switch {
	case tables["moz_places"]:
		return BrowserFirefox, nil
	case tables["history_items"] && tables["history_visits"]:
		return BrowserSafari, nil
	case tables["urls"]:
		return BrowserChrome, nil
	default:
		return "", perr.InvalidInputf("snapshot has no recognizable history schema")
	}
}

func unixMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}
