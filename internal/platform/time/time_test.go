package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	t.Parallel()

	if Ptr(time.Time{}) != nil {
		t.Fatal("Ptr of zero time should be nil")
	}
	at := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	p := Ptr(at)
	if p == nil || !p.Equal(at) {
		t.Fatalf("Ptr returned %v", p)
	}
}

func TestIsWeekend(t *testing.T) {
	t.Parallel()

	// 2024-03-04 is a Monday
	for day := 4; day <= 10; day++ {
		at := time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
		want := at.Weekday() == time.Saturday || at.Weekday() == time.Sunday
		if got := IsWeekend(at); got != want {
			t.Errorf("IsWeekend(%s)=%v want %v", at.Weekday(), got, want)
		}
	}
}

func TestDayPart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hour int
		want string
	}{
		{5, EarlyMorning},
		{8, EarlyMorning},
		{9, Morning},
		{11, Morning},
		{12, Lunch},
		{13, Afternoon},
		{16, Afternoon},
		{17, Evening},
		{19, Evening},
		{20, Night},
		{22, Night},
		{23, LateNight},
		{2, LateNight},
		{4, LateNight},
	}
	for _, c := range cases {
		at := time.Date(2024, 3, 4, c.hour, 0, 0, 0, time.UTC)
		if got := DayPart(at); got != c.want {
			t.Errorf("DayPart(%02d:00)=%s want %s", c.hour, got, c.want)
		}
	}
}
