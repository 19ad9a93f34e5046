package audience

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Boolean operators recognized at the head of a condition array.
const (
	operatorAnd = "and"
	operatorOr  = "or"
	operatorNot = "not"
)

// Match operators recognized in leaf conditions.
const (
	matchExact     = "exact"
	matchExists    = "exists"
	matchSubstring = "substring"
	matchGreater   = "gt"
	matchLess      = "lt"
)

// Conditions is a parsed, immutable audience condition tree.
// A nil *Conditions matches every user.
type Conditions struct {
	root node
}

type node interface {
	evaluate(attrs map[string]any) bool
}

// ParseConditions parses datafile condition JSON into a condition tree.
// Empty or "null" input yields a nil *Conditions, meaning "everyone".
func ParseConditions(raw json.RawMessage) (*Conditions, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.Join(ErrInvalidConditions, err)
	}
	if decoded == nil {
		return nil, nil
	}

	root, err := buildNode(decoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidConditions, err)
	}
	return &Conditions{root: root}, nil
}

// Evaluate reports whether the given user attributes satisfy the condition
// tree. It never fails: unresolvable leaves evaluate to false.
func (c *Conditions) Evaluate(attrs map[string]any) bool {
	if c == nil || c.root == nil {
		return true
	}
	return c.root.evaluate(attrs)
}

// Or combines condition trees into a single tree that matches when any of
// them matches. Nil inputs are skipped; an all-nil input yields nil
// ("everyone").
func Or(conditions ...*Conditions) *Conditions {
	kids := make([]node, 0, len(conditions))
	for _, c := range conditions {
		if c == nil || c.root == nil {
			continue
		}
		kids = append(kids, c.root)
	}
	switch len(kids) {
	case 0:
		return nil
	case 1:
		return &Conditions{root: kids[0]}
	default:
		return &Conditions{root: &operatorNode{op: operatorOr, children: kids}}
	}
}

func buildNode(v any) (node, error) {
	switch value := v.(type) {
	case []any:
		return buildOperatorNode(value)
	case map[string]any:
		return buildLeafNode(value)
	default:
		return nil, fmt.Errorf("condition must be an array or an object, got %T", v)
	}
}

func buildOperatorNode(items []any) (node, error) {
	if len(items) == 0 {
		return nil, errors.New("empty condition array")
	}

	op := operatorOr
	rest := items
	if head, ok := items[0].(string); ok {
		switch strings.ToLower(head) {
		case operatorAnd, operatorOr, operatorNot:
			op = strings.ToLower(head)
			rest = items[1:]
		default:
			return nil, fmt.Errorf("unknown condition operator %q", head)
		}
	}

	if len(rest) == 0 {
		return nil, fmt.Errorf("operator %q has no operands", op)
	}
	if op == operatorNot && len(rest) != 1 {
		return nil, fmt.Errorf("operator %q takes exactly one operand, got %d", op, len(rest))
	}

	children := make([]node, 0, len(rest))
	for _, item := range rest {
		child, err := buildNode(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &operatorNode{op: op, children: children}, nil
}

func buildLeafNode(obj map[string]any) (node, error) {
	name, ok := obj["name"].(string)
	if !ok || name == "" {
		return nil, errors.New("leaf condition is missing a non-empty \"name\"")
	}

	match := matchExact
	if m, present := obj["match"]; present {
		s, ok := m.(string)
		if !ok {
			return nil, fmt.Errorf("leaf condition %q has a non-string \"match\"", name)
		}
		match = s
	}

	return &leafNode{name: name, match: match, value: obj["value"]}, nil
}

type operatorNode struct {
	op       string
	children []node
}

func (n *operatorNode) evaluate(attrs map[string]any) bool {
	switch n.op {
	case operatorAnd:
		for _, child := range n.children {
			if !child.evaluate(attrs) {
				return false
			}
		}
		return true
	case operatorNot:
		return !n.children[0].evaluate(attrs)
	default: // operatorOr
		for _, child := range n.children {
			if child.evaluate(attrs) {
				return true
			}
		}
		return false
	}
}

type leafNode struct {
	name  string
	match string
	value any
}

func (n *leafNode) evaluate(attrs map[string]any) bool {
	actual, present := attrs[n.name]

	switch n.match {
	case matchExists:
		return present && actual != nil
	case matchExact:
		if !present {
			return false
		}
		return exactMatch(n.value, actual)
	case matchSubstring:
		expected, okExpected := n.value.(string)
		actualStr, okActual := actual.(string)
		return okExpected && okActual && strings.Contains(actualStr, expected)
	case matchGreater:
		expected, okExpected := toFloat(n.value)
		actualNum, okActual := toFloat(actual)
		return okExpected && okActual && actualNum > expected
	case matchLess:
		expected, okExpected := toFloat(n.value)
		actualNum, okActual := toFloat(actual)
		return okExpected && okActual && actualNum < expected
	default:
		// Unknown matcher, likely authored for a newer SDK version.
		return false
	}
}

func exactMatch(expected, actual any) bool {
	switch want := expected.(type) {
	case string:
		got, ok := actual.(string)
		return ok && got == want
	case bool:
		got, ok := actual.(bool)
		return ok && got == want
	default:
		wantNum, okWant := toFloat(expected)
		gotNum, okGot := toFloat(actual)
		return okWant && okGot && wantNum == gotNum
	}
}

// toFloat widens the numeric types a datafile or an attribute map can carry
// into float64 for comparison.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
