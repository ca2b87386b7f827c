package catalog

import "testing"

func TestRelationRuleAccepts(t *testing.T) {
	tests := []struct {
		name  string
		rule  RelationRule
		count int
		want  bool
	}{
		{"unbounded accepts anything", Unbounded(0), 1000, true},
		{"below upper limit", Bounded(0, 2), 1, true},
		{"at upper limit", Bounded(0, 2), 2, false},
		{"single already taken", Bounded(1, 1), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Accepts(tt.count); got != tt.want {
				t.Errorf("%s.Accepts(%d) = %v, want %v", tt.rule, tt.count, got, tt.want)
			}
		})
	}
}

func TestRelationRuleSatisfied(t *testing.T) {
	if Bounded(1, 1).Satisfied(0) {
		t.Error("expected {1,1} not to be satisfied by zero connections")
	}
	if !Unbounded(0).Satisfied(0) {
		t.Error("expected {0,*} to be satisfied by zero connections")
	}
}

func TestRelationRuleMirror(t *testing.T) {
	tests := []struct {
		name string
		rule RelationRule
		want RelationRule
	}{
		{"optional unbounded", Unbounded(0), Bounded(0, 1)},
		{"mandatory unbounded", Unbounded(2), Bounded(1, 1)},
		{"mandatory single", Bounded(1, 1), Bounded(1, 1)},
		{"optional bounded", Bounded(0, 5), Bounded(0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Mirror(); !got.Equal(tt.want) {
				t.Errorf("%s.Mirror() = %s, want %s", tt.rule, got, tt.want)
			}
		})
	}
}

func TestRelationRuleCombine(t *testing.T) {
	tests := []struct {
		name string
		a, b RelationRule
		want RelationRule
	}{
		{"two singles", Bounded(1, 1), Bounded(0, 1), Bounded(1, 2)},
		{"one unbounded", Bounded(1, 1), Unbounded(0), Unbounded(1)},
		{"both unbounded", Unbounded(2), Unbounded(1), Unbounded(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Combine(tt.b); !got.Equal(tt.want) {
				t.Errorf("%s.Combine(%s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRelationRuleString(t *testing.T) {
	if got := Unbounded(0).String(); got != "{0,*}" {
		t.Errorf("expected {0,*}, got %s", got)
	}
	if got := Bounded(1, 3).String(); got != "{1,3}" {
		t.Errorf("expected {1,3}, got %s", got)
	}
}

func TestParseModifier(t *testing.T) {
	tests := map[string]Modifier{
		"r":          ModifierReadOnly,
		"read-only":  ModifierReadOnly,
		"rw":         ModifierReadWrite,
		"rw+":        ModifierReadWriteAlways,
		"read-write": ModifierReadWrite,
		"bogus":      "",
	}
	for in, want := range tests {
		if got := ParseModifier(in); got != want {
			t.Errorf("ParseModifier(%q) = %q, want %q", in, got, want)
		}
	}

	if !ModifierReadWrite.IsImmutableAfterCreate() {
		t.Error("expected rw to be immutable after create")
	}
	if ModifierReadWriteAlways.IsImmutableAfterCreate() {
		t.Error("expected rw+ to stay editable")
	}
}
