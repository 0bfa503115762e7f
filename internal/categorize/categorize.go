// Package categorize suggests a category for an imported transaction from
// its description and merchant.
package categorize

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"gopkg.in/yaml.v3"

	"github.com/carson-networks/budget-ledger/internal/model"
)

const (
	ConfidenceLearned = 1.0
	ConfidenceKeyword = 0.6
)

// Categorizer is consulted when a candidate is imported and told about the
// category the user settled on when it is promoted.
//
//go:generate mockery --name Categorizer --inpackage --with-expecter
type Categorizer interface {
	// SuggestCategory returns nil and 0 when nothing matches.
	SuggestCategory(description, merchant string) (*uuid.UUID, float64)
	LearnFromCorrection(description, merchant string, categoryID uuid.UUID)
}

// CategoryResolver finds a category by its machine name.
type CategoryResolver interface {
	CategoryByName(name string) (*model.Category, bool)
}

// Rule maps keywords found in a description or merchant to a category name.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category rules: %w", err)
	}
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse category rules %s: %w", path, err)
	}
	return &set, nil
}

// RuleCategorizer matches learned merchants first, then keyword rules in
// file order.
type RuleCategorizer struct {
	rules      []Rule
	categories CategoryResolver

	mu      sync.RWMutex
	learned map[string]uuid.UUID
}

var _ Categorizer = (*RuleCategorizer)(nil)

func NewRuleCategorizer(rules *RuleSet, categories CategoryResolver) *RuleCategorizer {
	c := &RuleCategorizer{
		categories: categories,
		learned:    make(map[string]uuid.UUID),
	}
	if rules != nil {
		for _, r := range rules.Rules {
			keywords := make([]string, 0, len(r.Keywords))
			for _, k := range r.Keywords {
				if k = normalize(k); k != "" {
					keywords = append(keywords, k)
				}
			}
			c.rules = append(c.rules, Rule{Category: r.Category, Keywords: keywords})
		}
	}
	return c
}

func (c *RuleCategorizer) SuggestCategory(description, merchant string) (*uuid.UUID, float64) {
	if key := normalize(merchant); key != "" {
		c.mu.RLock()
		id, ok := c.learned[key]
		c.mu.RUnlock()
		if ok {
			return model.IDPtr(id), ConfidenceLearned
		}
	}

	text := normalize(description + " " + merchant)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if !strings.Contains(text, keyword) {
				continue
			}
			category, ok := c.categories.CategoryByName(rule.Category)
			if !ok {
				break
			}
			return model.IDPtr(category.ID), ConfidenceKeyword
		}
	}
	return nil, 0
}

// LearnFromCorrection remembers categoryID for the merchant. Corrections
// without a merchant are not kept.
func (c *RuleCategorizer) LearnFromCorrection(_ string, merchant string, categoryID uuid.UUID) {
	key := normalize(merchant)
	if key == "" || categoryID == uuid.Nil {
		return
	}
	c.mu.Lock()
	c.learned[key] = categoryID
	c.mu.Unlock()
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
