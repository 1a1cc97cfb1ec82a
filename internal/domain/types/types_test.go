package types

import "testing"

func TestScopeMapClone(t *testing.T) {
	m := ScopeMap{"league": true, "league.owner": false}
	c := m.Clone()

	c["league"] = false
	c["extra"] = true

	if !m["league"] {
		t.Fatal("clone mutated the original")
	}
	if _, ok := m["extra"]; ok {
		t.Fatal("clone shares storage with the original")
	}
}

func TestScopeMapMerge(t *testing.T) {
	m := ScopeMap{"league": true}
	m.Merge(ScopeMap{"league": false, "is_admin": true})

	if m["league"] {
		t.Fatal("merge should overwrite on conflict")
	}
	if !m["is_admin"] {
		t.Fatal("merge should add new entries")
	}
}

func TestLoginRecordNilSafety(t *testing.T) {
	var r *LoginRecord
	if r.UserID() != "" {
		t.Fatal("nil record should have no user")
	}
	if r.OwnsLeague("L1") {
		t.Fatal("nil record owns nothing")
	}

	r = &LoginRecord{LeagueIDs: []string{"L1"}}
	if r.UserID() != "" {
		t.Fatal("record without identifiers should have no user")
	}
	if !r.OwnsLeague("L1") || r.OwnsLeague("L2") {
		t.Fatal("league ownership wrong")
	}
}
