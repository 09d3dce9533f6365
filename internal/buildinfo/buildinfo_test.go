package buildinfo

import "testing"

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
	Version, Commit, Date = version, commit, date
}

func TestShort(t *testing.T) {
	cases := []struct {
		version, commit, want string
	}{
		{"0.1.0", "", "0.1.0"},
		{"0.1.0", "abc123", "0.1.0"},
		{"dev", "abc123", "dev-abc123"},
		{"", "", "dev"},
	}
	for _, tc := range cases {
		stamp(t, tc.version, tc.commit, "")
		if got := Short(); got != tc.want {
			t.Fatalf("Short() with %q/%q = %q, want %q", tc.version, tc.commit, got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	stamp(t, "0.2.0", "abc123", "2026-10-01")
	if got, want := String(), "0.2.0 (abc123) built 2026-10-01"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
