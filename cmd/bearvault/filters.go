package main

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// parseFilter reads a rule written as field:operator[:value]. Range
// operators take lo..hi as the value.
func parseFilter(s string) (models.FilterRule, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return models.FilterRule{}, errors.Errorf("filter %q: want field:operator[:value]", s)
	}
	op, err := models.ParseOperator(parts[1])
	if err != nil {
		return models.FilterRule{}, err
	}
	rule := models.FilterRule{Field: strings.TrimSpace(parts[0]), Operator: op}
	if len(parts) == 3 {
		rule.Value = parts[2]
		if op == models.OpBetween {
			lo, hi, ok := strings.Cut(parts[2], "..")
			if !ok {
				return models.FilterRule{}, errors.Errorf("filter %q: between wants lo..hi", s)
			}
			rule.Value, rule.Value2 = lo, hi
		}
	}
	return rule, nil
}

func parseFilters(specs []string) ([]models.FilterRule, error) {
	rules := make([]models.FilterRule, 0, len(specs))
	for _, s := range specs {
		rule, err := parseFilter(s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// rulesFile is the YAML accepted by compile: either a bare list of rules or
// a mapping with a filters key
type rulesFile struct {
	Filters []models.FilterRule `yaml:"filters"`
}

func readRules(r io.Reader) ([]models.FilterRule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read rules")
	}

	var list []models.FilterRule
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse rules")
	}
	return f.Filters, nil
}

func readRulesFile(path string) ([]models.FilterRule, error) {
	if path == "" || path == "-" {
		return readRules(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open rules")
	}
	defer func() { _ = f.Close() }()
	return readRules(f)
}
