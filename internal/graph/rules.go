package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/rule"
)

// ruleFields mirrors the Style Rules list columns.
type ruleFields struct {
	Title         string          `json:"Title"`
	RuleType      string          `json:"RuleType"`
	DocumentType  string          `json:"DocumentType"`
	CheckValue    string          `json:"CheckValue"`
	ExpectedValue string          `json:"ExpectedValue"`
	AutoFix       flexBool        `json:"AutoFix"`
	UseAI         flexBool        `json:"UseAI"`
	Priority      json.RawMessage `json:"Priority,omitempty"`
}

type listItems[T any] struct {
	Value []struct {
		ID     string `json:"id"`
		WebURL string `json:"webUrl"`
		Fields T      `json:"fields"`
	} `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// FetchRules lists the rules store and returns the rules sorted by
// priority. Items without a priority get rule.DefaultPriority.
func (c *Client) FetchRules(ctx context.Context) ([]rule.Rule, error) {
	id, err := c.siteID(ctx)
	if err != nil {
		return nil, err
	}

	var rules []rule.Rule
	next := "/sites/" + id + "/lists/" + url.PathEscape(c.cfg.RulesList) + "/items?expand=fields"
	for next != "" {
		var page listItems[ruleFields]
		if err := c.do(ctx, "rules", http.MethodGet, next, nil, "", &page); err != nil {
			return nil, err
		}
		for _, it := range page.Value {
			f := it.Fields
			rules = append(rules, rule.Rule{
				ID:            it.ID,
				Title:         f.Title,
				Type:          rule.Type(f.RuleType),
				DocType:       rule.DocType(f.DocumentType),
				CheckValue:    f.CheckValue,
				ExpectedValue: f.ExpectedValue,
				AutoFix:       bool(f.AutoFix),
				UseAI:         bool(f.UseAI),
				Priority:      parsePriority(f.Priority),
			})
		}
		next = page.NextLink
	}

	rule.SortByPriority(rules)
	c.log.Info("rules fetched", zap.String("list", c.cfg.RulesList), zap.Int("count", len(rules)))
	return rules, nil
}

// SeedRules creates one list item per rule and returns how many were
// created before any failure.
func (c *Client) SeedRules(ctx context.Context, rules []rule.Rule) (int, error) {
	id, err := c.siteID(ctx)
	if err != nil {
		return 0, err
	}
	ref := "/sites/" + id + "/lists/" + url.PathEscape(c.cfg.RulesList) + "/items"
	for i, r := range rules {
		body := map[string]any{"fields": map[string]any{
			"Title":         r.Title,
			"RuleType":      string(r.Type),
			"DocumentType":  string(r.DocType),
			"CheckValue":    r.CheckValue,
			"ExpectedValue": r.ExpectedValue,
			"AutoFix":       r.AutoFix,
			"UseAI":         r.UseAI,
			"Priority":      r.Priority,
		}}
		if err := c.do(ctx, "seed", http.MethodPost, ref, body, "", nil); err != nil {
			return i, fmt.Errorf("graph.SeedRules: rule %q: %w", r.Label(), err)
		}
	}
	return len(rules), nil
}

// parsePriority accepts a JSON number or numeric string. Anything else is
// treated as absent.
func parsePriority(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return rule.DefaultPriority
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Round(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return rule.DefaultPriority
}

// flexBool decodes SharePoint yes/no columns, which arrive as booleans or,
// depending on the column type, as strings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true", "yes", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}
