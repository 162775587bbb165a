package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRequireText(t *testing.T) {
	if got := RequireText("   \t", "Please give your album a title"); got.Valid {
		t.Fatalf("expected whitespace-only value to fail")
	}
	got := RequireText(" Sarah's Graduation ", "unused")
	if diff := cmp.Diff(OK(), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionCount(t *testing.T) {
	cases := []struct {
		name   string
		n      int
		bounds Bounds
		want   Result
	}{
		{name: "below min", n: 0, bounds: Bounds{Min: 1, Max: 3}, want: Fail("Please select at least one style")},
		{name: "inside", n: 2, bounds: Bounds{Min: 1, Max: 3}, want: OK()},
		{name: "above max", n: 4, bounds: Bounds{Min: 1, Max: 3}, want: Fail("Please select at most 3 styles")},
		{name: "unbounded", n: 40, bounds: Bounds{Min: 1}, want: OK()},
		{name: "zero min", n: 0, bounds: Bounds{Min: 0, Max: 3}, want: OK()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectionCount(tc.n, tc.bounds, "style")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileCount(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want Result
	}{
		{name: "empty", n: 0, want: Fail("Please upload at least 5 photos")},
		{name: "enough", n: 5, want: OK()},
		{name: "too many", n: 11, want: Fail("Maximum 10 photos allowed")},
	}
	for _, tc := range cases {
		got := FileCount(tc.n, Bounds{Min: 5, Max: 10}, "photo")
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: result mismatch (-want +got):\n%s", tc.name, diff)
		}
	}

	if got := FileCount(0, Bounds{Min: 1, Max: 10}, "photo"); got.Error != "Please upload at least one photo" {
		t.Fatalf("unexpected message %q", got.Error)
	}
}

func TestEmail(t *testing.T) {
	for _, value := range []string{"you@example.com", " a@b.co "} {
		if !Email(value, "bad").Valid {
			t.Fatalf("expected %q to be accepted", value)
		}
	}
	for _, value := range []string{"", "you@example", "you example@x.com", "@x.com"} {
		if Email(value, "bad").Valid {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestMinLength(t *testing.T) {
	if MinLength("  short     ", 10, "Please provide more detail").Valid {
		t.Fatalf("expected trimmed short text to fail")
	}
	if !MinLength("a cap and gown outdoors", 10, "x").Valid {
		t.Fatalf("expected long text to pass")
	}
	// exactly min runes is not enough: the check is strictly greater
	if MinLength("0123456789", 10, "x").Valid {
		t.Fatalf("expected text of exactly min length to fail")
	}
}

func TestAllReturnsFirstFailure(t *testing.T) {
	got := All(OK(), Fail("first"), Fail("second"))
	if diff := cmp.Diff(Fail("first"), got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if !All().Valid {
		t.Fatalf("expected empty All to pass")
	}
}

func TestPlural(t *testing.T) {
	cases := map[string]string{"photo": "photos", "category": "categories", "styles": "styles", "": ""}
	for in, want := range cases {
		if got := Plural(in); got != want {
			t.Fatalf("Plural(%q) = %q, want %q", in, got, want)
		}
	}
}
