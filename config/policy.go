package config

import (
	"fmt"
	"os"
	"regexp"

	"cuelang.org/go/cue/cuecontext"
)

// policySchema constrains .gloop/policy.cue the same way reusee-tai's
// configs.Loader unifies a schema against a loaded CUE document before
// decoding it.
const policySchema = `
dangerPatterns: [...string]
allowedBashVerbs: [...string]
contextPruneThreshold: int & >0
`

// defaultDangerPatterns are the built-in danger gate: rm-family commands
// that require confirmation before they run.
var defaultDangerPatterns = []string{
	`\brm\b`,
	`\brmdir\b`,
	`\brm\s+-rf?\b`,
	`\brm\s+-fr?\b`,
}

// Policy is the danger-gate and context-prune configuration loaded from an
// optional .gloop/policy.cue document.
type Policy struct {
	DangerPatterns        []*regexp.Regexp
	AllowedBashVerbs      []string
	ContextPruneThreshold int
}

type policyDocument struct {
	DangerPatterns        []string `json:"dangerPatterns"`
	AllowedBashVerbs      []string `json:"allowedBashVerbs"`
	ContextPruneThreshold int      `json:"contextPruneThreshold"`
}

// DefaultPolicy returns the built-in policy used when no policy.cue file is
// present, so a fresh checkout needs no extra setup.
func DefaultPolicy() Policy {
	return Policy{
		DangerPatterns:        compilePatterns(defaultDangerPatterns),
		AllowedBashVerbs:      nil,
		ContextPruneThreshold: 50,
	}
}

// LoadPolicy reads and validates path against policySchema if it exists.
// A missing file is not an error: it returns DefaultPolicy().
func LoadPolicy(path string) (Policy, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return Policy{}, fmt.Errorf("config: read policy file: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString("close({" + policySchema + "})")
	if err := schema.Err(); err != nil {
		return Policy{}, fmt.Errorf("config: compile policy schema: %w", err)
	}

	value := ctx.CompileBytes(content)
	if err := value.Err(); err != nil {
		return Policy{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := schema.Unify(value).Validate(); err != nil {
		return Policy{}, fmt.Errorf("config: validate %s against policy schema: %w", path, err)
	}

	var doc policyDocument
	if err := value.Decode(&doc); err != nil {
		return Policy{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	policy := Policy{
		DangerPatterns:        compilePatterns(doc.DangerPatterns),
		AllowedBashVerbs:      doc.AllowedBashVerbs,
		ContextPruneThreshold: doc.ContextPruneThreshold,
	}
	if len(policy.DangerPatterns) == 0 {
		policy.DangerPatterns = compilePatterns(defaultDangerPatterns)
	}
	if policy.ContextPruneThreshold == 0 {
		policy.ContextPruneThreshold = 50
	}
	return policy, nil
}

func compilePatterns(raw []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(raw))
	for _, pattern := range raw {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}
