// Package jsonmatch checks that a decoded JSON document contains an expected
// subset, with the semantics of Jest's toMatchObject.
package jsonmatch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MismatchError reports the first path where actual diverges from expected.
type MismatchError struct {
	Path     string
	Expected any
	Actual   any
	Reason   string
}

func (e *MismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: expected %s, got %s", e.Path, render(e.Expected), render(e.Actual))
}

func render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Subset returns nil when every key of expected is present in actual with a
// matching value. Arrays must have equal length. Scalars compare strictly.
// Both sides are normalized first, so typed Go slices and structs compare
// by their JSON form.
func Subset(expected, actual any) error {
	exp, err := Normalize(expected)
	if err != nil {
		return fmt.Errorf("expected value: %w", err)
	}
	act, err := Normalize(actual)
	if err != nil {
		return fmt.Errorf("actual value: %w", err)
	}
	return subset("$", exp, act)
}

// SubsetJSON decodes body and matches expected against it.
func SubsetJSON(expected any, body []byte) error {
	if len(body) == 0 {
		return &MismatchError{Path: "$", Expected: expected, Reason: "request has no body"}
	}
	var actual any
	if err := json.Unmarshal(body, &actual); err != nil {
		return &MismatchError{Path: "$", Expected: expected, Reason: "body is not JSON: " + err.Error()}
	}
	exp, err := Normalize(expected)
	if err != nil {
		return err
	}
	return subset("$", exp, actual)
}

func subset(path string, expected, actual any) error {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return &MismatchError{Path: path, Expected: expected, Actual: actual}
		}
		keys := make([]string, 0, len(exp))
		for k := range exp {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := path + "." + k
			av, present := act[k]
			if !present {
				return &MismatchError{Path: child, Expected: exp[k], Reason: "missing property"}
			}
			if err := subset(child, exp[k], av); err != nil {
				return err
			}
		}
		return nil
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return &MismatchError{Path: path, Expected: expected, Actual: actual}
		}
		if len(act) != len(exp) {
			return &MismatchError{Path: path, Expected: expected, Actual: actual,
				Reason: fmt.Sprintf("expected %d elements, got %d", len(exp), len(act))}
		}
		for i := range exp {
			if err := subset(path+"["+strconv.Itoa(i)+"]", exp[i], act[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		if expected != actual {
			return &MismatchError{Path: path, Expected: expected, Actual: actual}
		}
		return nil
	}
}

// Normalize turns values decoded from YAML (or built in Go) into the shapes
// encoding/json produces: map[string]any, []any, float64, string, bool, nil.
func Normalize(v any) (any, error) {
	plain, err := stringKeys(v)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return out, nil
}

func stringKeys(v any) (any, error) {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			cv, err := stringKeys(val)
			if err != nil {
				return nil, err
			}
			m[ks] = cv
		}
		return m, nil
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			cv, err := stringKeys(val)
			if err != nil {
				return nil, err
			}
			m[k] = cv
		}
		return m, nil
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			cv, err := stringKeys(val)
			if err != nil {
				return nil, err
			}
			s[i] = cv
		}
		return s, nil
	default:
		return v, nil
	}
}
