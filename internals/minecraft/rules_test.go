package minecraft

import "testing"

func TestRulesApply(t *testing.T) {
	linuxCtx := &RuleContext{OS: "linux", Arch: "x64"}

	tests := []struct {
		name  string
		rules []Rule
		ctx   *RuleContext
		want  bool
	}{
		{
			name:  "no rules",
			rules: nil,
			ctx:   linuxCtx,
			want:  true,
		},
		{
			name:  "allow empty",
			rules: []Rule{{Action: "allow"}},
			ctx:   linuxCtx,
			want:  true,
		},
		{
			name:  "allow os",
			rules: []Rule{{Action: "allow", OS: OS{Name: "linux"}}},
			ctx:   linuxCtx,
			want:  true,
		},
		{
			name:  "allow other os",
			rules: []Rule{{Action: "allow", OS: OS{Name: "osx"}}},
			ctx:   linuxCtx,
			want:  false,
		},
		{
			name:  "disallow os",
			rules: []Rule{{Action: "disallow", OS: OS{Name: "linux"}}},
			ctx:   linuxCtx,
			want:  false,
		},
		{
			name: "allow all disallow one",
			rules: []Rule{
				{Action: "allow"},
				{Action: "disallow", OS: OS{Name: "osx"}},
			},
			ctx:  &RuleContext{OS: "osx", Arch: "x64"},
			want: false,
		},
		{
			name: "allow all disallow other",
			rules: []Rule{
				{Action: "allow"},
				{Action: "disallow", OS: OS{Name: "osx"}},
			},
			ctx:  linuxCtx,
			want: true,
		},
		{
			name: "last matching rule wins",
			rules: []Rule{
				{Action: "disallow", OS: OS{Name: "linux"}},
				{Action: "allow", OS: OS{Name: "linux"}},
			},
			ctx:  linuxCtx,
			want: true,
		},
		{
			name:  "rules present but nothing matches",
			rules: []Rule{{Action: "allow", OS: OS{Name: "windows"}}},
			ctx:   linuxCtx,
			want:  false,
		},
		{
			name:  "allow arch",
			rules: []Rule{{Action: "allow", OS: OS{Arch: "x64"}}},
			ctx:   linuxCtx,
			want:  true,
		},
		{
			name:  "allow wrong arch",
			rules: []Rule{{Action: "allow", OS: OS{Arch: "x86"}}},
			ctx:   linuxCtx,
			want:  false,
		},
		{
			name:  "version regex matches",
			rules: []Rule{{Action: "allow", OS: OS{Name: "windows", Version: `^10\.`}}},
			ctx:   &RuleContext{OS: "windows", Arch: "x64", OSVersion: "10.0.19045"},
			want:  true,
		},
		{
			name:  "version regex misses",
			rules: []Rule{{Action: "allow", OS: OS{Name: "windows", Version: `^10\.`}}},
			ctx:   &RuleContext{OS: "windows", Arch: "x64", OSVersion: "6.1"},
			want:  false,
		},
		{
			name:  "feature required",
			rules: []Rule{{Action: "allow", Features: map[string]bool{"is_demo_user": true}}},
			ctx:   linuxCtx,
			want:  false,
		},
		{
			name:  "feature set",
			rules: []Rule{{Action: "allow", Features: map[string]bool{"is_demo_user": true}}},
			ctx:   &RuleContext{OS: "linux", Arch: "x64", Features: map[string]bool{"is_demo_user": true}},
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RulesApply(tt.rules, tt.ctx); got != tt.want {
				t.Errorf("RulesApply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"amd64", "x64"},
		{"x86_64", "x64"},
		{"386", "x86"},
		{"arm", "arm32"},
		{"arm64", "arm64"},
	}
	for _, tt := range tests {
		if got := normalizeArch(tt.in); got != tt.want {
			t.Errorf("normalizeArch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeOS(t *testing.T) {
	if got := normalizeOS("darwin"); got != "osx" {
		t.Errorf("normalizeOS(darwin) = %q, want osx", got)
	}
	if got := normalizeOS("linux"); got != "linux" {
		t.Errorf("normalizeOS(linux) = %q, want linux", got)
	}
}
