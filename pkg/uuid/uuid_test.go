package uuid

import "testing"

func TestNew_Unique(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatalf("two fresh UUIDs must differ, both were %s", a)
	}
	if a.IsZero() {
		t.Fatal("fresh UUID must not be zero")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	u := New()
	parsed, err := Parse(u.String())
	if err != nil {
		t.Fatalf("parse own string form: %v", err)
	}
	if parsed != u {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, u)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-uuid", "00000000-0000-0000-0000", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	u := New()
	b, err := u.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got UUID
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != u {
		t.Fatalf("json round trip mismatch: %s vs %s", got, u)
	}
}
