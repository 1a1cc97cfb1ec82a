package validation

import (
	"strings"
	"testing"
)

func TestValidScopeName(t *testing.T) {
	valid := []string{
		"a",
		"league",
		"league.match",
		"league.login.user.get",
		"site.loggedIn",
		"create_queue",
		"is_admin",
		"a_b-c.d:scope2",
		strings.Repeat("a", 64),
	}
	for _, v := range valid {
		if !ValidScopeName(v) {
			t.Errorf("expected valid: %q", v)
		}
	}

	invalid := []string{
		"",
		".lead",
		"trail.",
		"bad space",
		"semicolon;hack",
		"league\nmatch",
		strings.Repeat("a", 65),
	}
	for _, v := range invalid {
		if ValidScopeName(v) {
			t.Errorf("expected invalid: %q", v)
		}
	}
}
