// Package rules implements the Rule Evaluator (§4.7): OS/arch/feature
// gate evaluation over a manifest's rules array.
//
// Grounded on the teacher's game/folder/rules/rules.go#ShouldInclude and
// shared.Platform.CreateRules, trimmed to the spec's exact
// last-match-wins semantics over an ordered scan.
package rules

import (
	"runtime"
	"strings"

	"github.com/yuanquanya/netmc-launcher/internal/mcmanifest"
)

// OSTag is the current platform's tag as the manifest schema spells it.
func OSTag() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "osx"
	default:
		return "linux"
	}
}

// is32Bit reports whether the current CPU architecture is 32-bit.
func is32Bit() bool {
	return runtime.GOARCH == "386" || runtime.GOARCH == "arm"
}

// Allows evaluates rulesList left-to-right per spec.md §4.7: the
// effective decision is the action of the last matching rule, defaulting
// to deny if none matches. An empty rules array allows.
func Allows(rulesList []mcmanifest.Rule) bool {
	if len(rulesList) == 0 {
		return true
	}

	decision := false
	matchedAny := false

	for _, r := range rulesList {
		if !matches(r) {
			continue
		}
		matchedAny = true
		decision = r.Action == "allow"
	}

	return matchedAny && decision
}

func matches(r mcmanifest.Rule) bool {
	if r.Features != nil {
		return false
	}

	if r.OS != nil {
		if r.OS.Name != "" && !strings.EqualFold(r.OS.Name, OSTag()) {
			return false
		}
		if strings.EqualFold(r.OS.Arch, "x86") && !is32Bit() {
			return false
		}
	}

	return true
}
