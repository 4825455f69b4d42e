package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
)

type (
	// ConditionOp is one of the closed set of predicate operators
	ConditionOp string

	// Condition is a single predicate over the execution document. Paths
	// address either seeded context values ("context.environment") or the
	// results of earlier steps ("steps.build.status")
	Condition struct {
		Path   string      `json:"path"`
		Op     ConditionOp `json:"op"`
		Value  any         `json:"value,omitempty"`
		Values []any       `json:"values,omitempty"`
	}

	// Conditions is a conjunction of predicates. A step whose conditions
	// do not all hold is skipped without invoking its handler
	Conditions []*Condition
)

const (
	ConditionEq     ConditionOp = "eq"
	ConditionNe     ConditionOp = "ne"
	ConditionIn     ConditionOp = "in"
	ConditionExists ConditionOp = "exists"
	ConditionAbsent ConditionOp = "absent"
)

var (
	ErrEmptyConditionPath = errors.New("condition path must not be empty")
	ErrUnknownConditionOp = errors.New("unknown condition operator")
	ErrConditionNoValues  = errors.New("in condition requires values")
	ErrMarshalDocument    = errors.New("failed to marshal condition document")
)

// ConditionDocument renders the execution context and prior step results as
// the JSON document conditions are evaluated against
func ConditionDocument(execCtx Args, results StepResults) ([]byte, error) {
	doc := struct {
		Context Args        `json:"context"`
		Steps   StepResults `json:"steps"`
	}{
		Context: execCtx,
		Steps:   results,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalDocument, err)
	}
	return data, nil
}

// Validate checks that every condition uses a known operator and carries
// the operands that operator requires
func (cs Conditions) Validate() error {
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate reports whether every condition holds against the document
func (cs Conditions) Evaluate(doc []byte) (bool, error) {
	for _, c := range cs {
		ok, err := c.Evaluate(doc)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Validate checks the condition's operator and operands
func (c *Condition) Validate() error {
	if c.Path == "" {
		return ErrEmptyConditionPath
	}
	switch c.Op {
	case ConditionEq, ConditionNe, ConditionExists, ConditionAbsent:
		return nil
	case ConditionIn:
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: %s", ErrConditionNoValues, c.Path)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownConditionOp, c.Op)
	}
}

// Evaluate applies the condition to the document
func (c *Condition) Evaluate(doc []byte) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}

	res := gjson.GetBytes(doc, c.Path)
	switch c.Op {
	case ConditionExists:
		return res.Exists(), nil
	case ConditionAbsent:
		return !res.Exists(), nil
	case ConditionEq:
		return res.Exists() && valuesEqual(res.Value(), c.Value), nil
	case ConditionNe:
		return !res.Exists() || !valuesEqual(res.Value(), c.Value), nil
	case ConditionIn:
		if !res.Exists() {
			return false, nil
		}
		actual := res.Value()
		for _, v := range c.Values {
			if valuesEqual(actual, v) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownConditionOp, c.Op)
	}
}

// valuesEqual compares a gjson-decoded value against a condition operand,
// normalizing numeric types so 3 and 3.0 compare equal
func valuesEqual(left, right any) bool {
	return reflect.DeepEqual(normalize(left), normalize(right))
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
