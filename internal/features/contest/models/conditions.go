package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ConditionType is the primitive eligibility check kind.
type ConditionType string

const (
	ConditionLike    ConditionType = "like"
	ConditionComment ConditionType = "comment"
	ConditionRepost  ConditionType = "repost"
)

// Condition is one primitive eligibility condition. TextContains applies
// to comment conditions only: the comment must contain the substring.
type Condition struct {
	Type         ConditionType `json:"type"`
	TextContains *string       `json:"text_contains,omitempty"`
}

func (c Condition) Validate() error {
	switch c.Type {
	case ConditionLike, ConditionRepost:
		if c.TextContains != nil {
			return fmt.Errorf("text_contains is only valid for comment conditions")
		}
	case ConditionComment:
	default:
		return fmt.Errorf("unknown condition type: %s", c.Type)
	}
	return nil
}

// AndGroup is a conjunctive group: a user qualifies for the group only if
// they satisfy every condition in it.
type AndGroup struct {
	Conditions []Condition `json:"conditions"`
}

func (g AndGroup) Validate() error {
	if len(g.Conditions) == 0 {
		return fmt.Errorf("condition group must not be empty")
	}
	for i, c := range g.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return nil
}

// ConditionSchema is the contest eligibility schema: disjunction over
// conjunctive groups. A user qualifies if any group admits them.
type ConditionSchema []AndGroup

func (s ConditionSchema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("at least one condition group is required")
	}
	for i, g := range s {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
	}
	return nil
}

func (s ConditionSchema) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ConditionSchema) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func scanJSON(value, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
