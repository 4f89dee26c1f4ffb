package history

import (
	"testing"
	"time"
)

func TestEntryLessTotalOrder(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := Entry{URL: "https://a.example/x", Title: "a", VisitedAt: t0, VisitCount: 1}
	b := Entry{URL: "https://b.example/x", Title: "b", VisitedAt: t0.Add(time.Minute), VisitCount: 1}

	if !a.Less(b) || b.Less(a) {
		t.Fatal("earlier visit must order first")
	}

	c := a
	c.URL = "https://c.example/x"
	if !a.Less(c) || c.Less(a) {
		t.Fatal("equal times must order by URL")
	}

	d := a
	d.Title = "z"
	if !a.Less(d) || d.Less(a) {
		t.Fatal("equal times and URLs must order by title")
	}

	e := a
	e.VisitCount = 5
	if !e.Less(a) || a.Less(e) {
		t.Fatal("full tie must order by visit count descending")
	}
}

func TestSecondsJSON(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Minute, "1800"},
		{90*time.Second + 500*time.Millisecond, "90.5"},
		{0, "0"},
	}
	for _, tc := range cases {
		b, err := Seconds(tc.d).MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.d, err)
		}
		if string(b) != tc.want {
			t.Fatalf("Seconds(%v) = %s, want %s", tc.d, b, tc.want)
		}
		var back Seconds
		if err := back.UnmarshalJSON(b); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back.Duration() != tc.d {
			t.Fatalf("round trip %v = %v", tc.d, back.Duration())
		}
	}
}
