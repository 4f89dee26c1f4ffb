package insights

import "testing"

func TestParseDepth(t *testing.T) {
	cases := []struct {
		in   string
		want Depth
		ok   bool
	}{
		{"", DepthComprehensive, true},
		{"quick_summary", DepthQuick, true},
		{" Basic ", DepthBasic, true},
		{"COMPREHENSIVE", DepthComprehensive, true},
		{"verbose", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDepth(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseDepth(%q) = %v, %v", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseDepth(%q) should fail", tc.in)
		}
	}
}

func TestDepthOrdering(t *testing.T) {
	if !DepthComprehensive.atLeast(DepthBasic) || !DepthBasic.atLeast(DepthQuick) {
		t.Fatal("depths must nest")
	}
	if DepthQuick.atLeast(DepthBasic) || DepthBasic.atLeast(DepthComprehensive) {
		t.Fatal("shallower depths must not claim deeper sections")
	}
	if !DepthQuick.atLeast(DepthQuick) {
		t.Fatal("a depth includes itself")
	}
}
