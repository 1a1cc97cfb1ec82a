package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"U9@Example.com", "u…@e….com"},
		{"a@b.io", "a@b.io"},
		{"", "***"},
		{"ab", "***"},
		{"not-an-email", "n…l"},
	}
	for _, c := range cases {
		if got := MaskEmail(c.in); got != c.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("abcdef123456"); got != "abcd…" {
		t.Errorf("got %q", got)
	}
	if got := MaskKey("ab"); got != "***" {
		t.Errorf("got %q", got)
	}
}
