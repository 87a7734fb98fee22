package omnetup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PatchRule is one whole-file textual substitution. An empty Replace deletes
// the pattern.
type PatchRule struct {
	Pattern string
	Replace string
}

// PatchResult reports what a rule actually did, so "pattern not found" is
// never mistaken for a successful substitution.
type PatchResult struct {
	Rule  PatchRule
	Count int
}

// makefilePatchRules are the two fixed corrections for the generated
// Makefile.inc:
//   - the hardcoded cross-toolchain prefix becomes a variable reference that
//     resolves to the active toolchain's bin directory at build time
//   - the linker flag rejected by the conda toolchain is dropped
var makefilePatchRules = []PatchRule{
	{Pattern: "arm64-apple-darwin20.0.0-", Replace: "$(TOOLCHAIN_BIN_DIR)/"},
	{Pattern: "-no_warn_duplicate_libraries", Replace: ""},
}

// applyPatchRules applies each rule across the whole content and reports
// per-rule occurrence counts. Rules whose pattern is absent are no-ops, which
// makes the patch idempotent.
func applyPatchRules(content string, rules []PatchRule) (string, []PatchResult) {
	results := make([]PatchResult, 0, len(rules))
	for _, rule := range rules {
		count := strings.Count(content, rule.Pattern)
		if count > 0 {
			content = strings.ReplaceAll(content, rule.Pattern, rule.Replace)
		}
		results = append(results, PatchResult{Rule: rule, Count: count})
	}
	return content, results
}

// patchFile rewrites path in place, preserving the pre-patch content as a
// .bak sibling for inspection or manual rollback.
func patchFile(path string, rules []PatchRule) ([]PatchResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("patch target missing: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read patch target: %w", err)
	}

	if err := os.WriteFile(path+".bak", data, info.Mode()); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	patched, results := applyPatchRules(string(data), rules)

	if err := os.WriteFile(path, []byte(patched), info.Mode()); err != nil {
		return nil, fmt.Errorf("failed to write patched file: %w", err)
	}
	return results, nil
}

// patchMakefile applies the fixed rule list to the generated Makefile.inc.
// A missing target file is an error; an absent pattern is a visible warning
// rather than a silent success, so upstream format changes surface here.
func patchMakefile(cfg *Config) error {
	target := filepath.Join(cfg.SrcDir(), "Makefile.inc")

	results, err := patchFile(target, makefilePatchRules)
	if err != nil {
		return err
	}

	for _, res := range results {
		colArrow.Print("-> ")
		if res.Count > 0 {
			colSuccess.Printf("Patched %q (%d occurrences)\n", res.Rule.Pattern, res.Count)
		} else {
			colWarn.Printf("Pattern not found, nothing replaced: %q\n", res.Rule.Pattern)
		}
	}
	return nil
}
