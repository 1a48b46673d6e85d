package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/segment"
)

// RuleSet is a classifier configuration together with the group prefix conventions
type RuleSet struct {
	Rules      []Rule
	GroupRules []segment.GroupRule
}

// ruleFile is the on-disk shape of a rule set
type ruleFile struct {
	Rules []struct {
		Category string   `yaml:"category"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"rules"`
	Groups map[string]int `yaml:"groups"`
}

// DefaultRuleSet returns DefaultRules with the default group conventions
func DefaultRuleSet() *RuleSet {
	return &RuleSet{Rules: DefaultRules(), GroupRules: segment.DefaultGroupRules()}
}

// LoadRules reads a YAML rule file. An empty path yields the default rule set.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to read classifier rules %s", path))
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule set. Omitted rules or group counts fall back to defaults.
func ParseRules(data []byte) (*RuleSet, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid classifier rules: %v", err))
	}

	set := DefaultRuleSet()

	if len(file.Rules) > 0 {
		set.Rules = make([]Rule, 0, len(file.Rules))
		for i, r := range file.Rules {
			cat, err := survey.ParseCategory(r.Category)
			if err != nil {
				return nil, errors.ConfigInvalid(fmt.Sprintf("rule %d: %v", i, err))
			}
			if len(r.Patterns) == 0 {
				return nil, errors.ConfigInvalid(fmt.Sprintf("rule %d (%s) has no patterns", i, cat))
			}
			set.Rules = append(set.Rules, Rule{Category: cat, Patterns: r.Patterns})
		}
	}

	for name, tokens := range file.Groups {
		cat, err := survey.ParseCategory(name)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("groups: %v", err))
		}
		if !cat.IsIndicator() {
			return nil, errors.ConfigInvalid(fmt.Sprintf("groups: %s columns are not grouped", cat))
		}
		if tokens < 1 {
			return nil, errors.ConfigInvalid(fmt.Sprintf("groups: %s prefix tokens must be positive", cat))
		}
		for i := range set.GroupRules {
			if set.GroupRules[i].Category == cat {
				set.GroupRules[i].PrefixTokens = tokens
			}
		}
	}

	return set, nil
}
