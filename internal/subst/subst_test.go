package subst

import "testing"

func TestRulesRunInOrder(t *testing.T) {
	e := New([]Rule{
		{Find: "colour", Replace: "color"},
		{Find: "color", Replace: "COLOR"},
	})
	if got := e.Apply("colour me"); got != "COLOR me" {
		t.Errorf("Apply = %q, want %q", got, "COLOR me")
	}
}

func TestEmptyFindSkipped(t *testing.T) {
	e := New([]Rule{{Find: "", Replace: "x"}})
	if got := e.Apply("untouched"); got != "untouched" {
		t.Errorf("Apply = %q, want input back", got)
	}
}

func TestCommaSpacing(t *testing.T) {
	e := New(nil)
	tests := []struct {
		in   string
		want string
	}{
		{"a,b", "a, b"},
		{"a ,b", "a, b"},
		{"a , b", "a, b"},
		{"a,  b", "a, b"},
		{"a, b", "a, b"},
		{"no commas", "no commas"},
	}
	for _, tt := range tests {
		if got := e.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommaBeforeQuoteUntouched(t *testing.T) {
	e := New(nil)
	in := `He said "well,", then left`
	want := `He said "well,", then left`
	if got := e.Apply(in); got != want {
		t.Errorf("Apply(%q) = %q, want %q", in, got, want)
	}
}

func TestNumericGroupingRestored(t *testing.T) {
	e := New(nil)
	tests := []struct {
		in   string
		want string
	}{
		{"1,000 gold", "1,000 gold"},
		{"1, 000 gold", "1,000 gold"},
		{"1, 000 items, and more", "1,000 items, and more"},
		{"You need 12,500,000 points", "You need 12,500,000 points"},
		{"Found 1,000 items, and more", "Found 1,000 items, and more"},
		{"pay 5,then go", "pay 5, then go"},
	}
	for _, tt := range tests {
		if got := e.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRuleThenNormalize(t *testing.T) {
	e := New([]Rule{{Find: "…", Replace: "..."}})
	in := "Wait… no,come back"
	want := "Wait... no, come back"
	if got := e.Apply(in); got != want {
		t.Errorf("Apply(%q) = %q, want %q", in, got, want)
	}
}
