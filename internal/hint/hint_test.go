package hint

import "testing"

func TestIsHit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		hint string
		want bool
	}{
		{"exact", "EMP", "EMP", true},
		{"exact ignores case", "emp", "EMP", true},
		{"exact miss", "EMPLOYEE", "EMP", false},
		{"trailing wildcard", "EMP_HIST", "EMP*", true},
		{"leading wildcard", "EMP_HIST", "*_HIST", true},
		{"both wildcards", "X_TMP_Y", "*TMP*", true},
		{"all", "ANYTHING", "*", true},
		{"prefix mark", "TMP_WORK", "prefix:tmp_", true},
		{"suffix mark", "TMP_WORK", "suffix:_WORK", true},
		{"contain mark", "A_WORK_B", "contain:work", true},
		{"pattern mark", "EMP2024", "pattern:^emp[0-9]+$", true},
		{"pattern miss", "EMPX", "pattern:^emp[0-9]+$", false},
		{"negated", "EMP", "!DEPT", true},
		{"negated hit", "DEPT", "!DEPT", false},
		{"bad pattern", "EMP", "pattern:(", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHit(tt.in, tt.hint); got != tt.want {
				t.Errorf("IsHit(%q, %q) = %v, want %v", tt.in, tt.hint, got, tt.want)
			}
		})
	}
}

func TestIsTarget(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		includes []string
		excludes []string
		want     bool
	}{
		{"empty lists target all", "EMP", nil, nil, true},
		{"include hit", "EMP", []string{"EMP*"}, nil, true},
		{"include miss", "DEPT", []string{"EMP*"}, nil, false},
		{"exclude hit", "EMP_TMP", nil, []string{"*_TMP"}, false},
		{"exclude wins over include", "EMP_TMP", []string{"EMP*"}, []string{"*_TMP"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTarget(tt.in, tt.includes, tt.excludes); got != tt.want {
				t.Errorf("IsTarget(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsTargetStable(t *testing.T) {
	includes := []string{"EMP*", "DEPT"}
	excludes := []string{"*_TMP"}
	names := []string{"EMP", "EMP_TMP", "DEPT", "BONUS", "EMP"}
	first := make([]bool, len(names))
	for i, n := range names {
		first[i] = IsTarget(n, includes, excludes)
	}
	for i := len(names) - 1; i >= 0; i-- {
		if got := IsTarget(names[i], includes, excludes); got != first[i] {
			t.Errorf("IsTarget(%q) changed across calls: %v then %v", names[i], first[i], got)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := Validate([]string{"EMP", "pattern:^ok$", "!pattern:(", "pattern:["})
	if len(bad) != 2 {
		t.Fatalf("expected 2 bad hints, got %v", bad)
	}
}
