// internal/service/moderation/rules.go

package moderation

import (
	"encoding/json"
	"fmt"
	"os"

	"zonechat/internal/domain/moderation"
)

// LoadRuleSet reads a rule set from a JSON file, or returns the embedded
// defaults when path is empty.
func LoadRuleSet(path string) (moderation.RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return moderation.RuleSet{}, fmt.Errorf("error reading rule set: %w", err)
	}

	var rules moderation.RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return moderation.RuleSet{}, fmt.Errorf("error parsing rule set: %w", err)
	}

	if rules.Version == "" {
		return moderation.RuleSet{}, fmt.Errorf("rule set must carry a version")
	}
	if rules.MinDigitRun <= 0 {
		rules.MinDigitRun = DefaultRuleSet().MinDigitRun
	}

	return rules, nil
}
