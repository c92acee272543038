package minecraft

import (
	"regexp"
	"runtime"
)

// Rule is a rule that can be applied to an argument or library.
// It determines if the argument or library applies to a given OS,
// architecture or feature set.
type Rule struct {
	Action   string          `json:"action"`
	OS       OS              `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OS defines the constraints of an OS that can be used in a [Rule]
type OS struct {
	Name string `json:"name,omitempty"`
	// Version of the os (a regex string)
	Version string `json:"version,omitempty"`
	// Arch of the system
	Arch string `json:"arch,omitempty"`
}

// RuleContext is the platform and feature state rules are evaluated
// against. Names follow the version.json conventions (osx, x64 …),
// use CurrentContext to derive one from the running system.
type RuleContext struct {
	OS        string
	Arch      string
	OSVersion string
	Features  map[string]bool
}

// CurrentContext returns the rule context for the running system
func CurrentContext() *RuleContext {
	return &RuleContext{
		OS:   normalizeOS(runtime.GOOS),
		Arch: normalizeArch(runtime.GOARCH),
	}
}

func normalizeOS(os string) string {
	if os == "darwin" {
		return "osx"
	}
	return os
}

func normalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64":
		return "x64"
	case "386", "i386":
		return "x86"
	case "arm":
		return "arm32"
	}
	// note: we don't know how other platforms are named
	return arch
}

// matches reports whether every constraint on the rule holds for ctx
func (r Rule) matches(ctx *RuleContext) bool {
	if r.OS.Name != "" && r.OS.Name != ctx.OS {
		return false
	}
	if r.OS.Arch != "" && r.OS.Arch != ctx.Arch {
		return false
	}
	if r.OS.Version != "" {
		re, err := regexp.Compile(r.OS.Version)
		if err != nil || !re.MatchString(ctx.OSVersion) {
			return false
		}
	}
	for feature, want := range r.Features {
		if ctx.Features[feature] != want {
			return false
		}
	}
	return true
}

// RulesApply evaluates a rule list against ctx. No rule list at all
// means the entry always applies. When a list is present the last
// matching rule wins, and a list where nothing matches excludes the
// entry. That asymmetry is how version.json silently skips optional
// platform natives.
func RulesApply(rules []Rule, ctx *RuleContext) bool {
	if len(rules) == 0 {
		return true
	}

	action := ""
	for _, rule := range rules {
		if rule.matches(ctx) {
			action = rule.Action
		}
	}
	return action == "allow"
}
