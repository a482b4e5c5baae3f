package entities

import (
	"fmt"
	"strings"
)

// SelectorKind is the locator family named on the left of a "type=value" selector.
type SelectorKind string

const (
	SelectorID    SelectorKind = "id"
	SelectorClass SelectorKind = "class"
	SelectorName  SelectorKind = "name"
	SelectorTag   SelectorKind = "tag"
	SelectorText  SelectorKind = "text"
	SelectorAttr  SelectorKind = "attr"
)

// Selector is a typed locator as written by the agent or the operator.
type Selector struct {
	Kind  SelectorKind
	Value string
}

// ParseSelector splits raw on its first "=" and validates the kind.
// The kind token is case-insensitive; kind and value are trimmed.
func ParseSelector(raw string) (Selector, error) {
	kind, value, ok := strings.Cut(raw, "=")
	if !ok {
		return Selector{}, fmt.Errorf("%w: %q must be in format type=value", ErrInvalidSelector, raw)
	}

	sel := Selector{
		Kind:  SelectorKind(strings.ToLower(strings.TrimSpace(kind))),
		Value: strings.TrimSpace(value),
	}

	switch sel.Kind {
	case SelectorID, SelectorClass, SelectorName, SelectorTag, SelectorText:
	case SelectorAttr:
		if !strings.Contains(sel.Value, "=") {
			return Selector{}, fmt.Errorf("%w: attr selector %q must be in format attr=key=value", ErrInvalidSelector, raw)
		}
	default:
		return Selector{}, fmt.Errorf("%w: unsupported selector type %q", ErrInvalidSelector, sel.Kind)
	}

	return sel, nil
}

// Query renders the selector as an engine query string.
// Quotes inside the value are not escaped.
func (s Selector) Query() string {
	switch s.Kind {
	case SelectorID:
		return "#" + s.Value
	case SelectorClass:
		return "." + strings.Join(strings.Fields(s.Value), ".")
	case SelectorName:
		return fmt.Sprintf("[name='%s']", s.Value)
	case SelectorText:
		return "text=" + s.Value
	case SelectorAttr:
		key, val, _ := strings.Cut(s.Value, "=")
		return fmt.Sprintf("[%s='%s']", key, val)
	default:
		return s.Value
	}
}

func (s Selector) String() string {
	return string(s.Kind) + "=" + s.Value
}

// ResolveSelector parses raw and returns its engine query.
func ResolveSelector(raw string) (string, error) {
	sel, err := ParseSelector(raw)
	if err != nil {
		return "", err
	}
	return sel.Query(), nil
}
