package planner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rahul/pathwise/internal/goal"
)

// ExtractArray returns the substring spanning the first '[' through the last
// ']' of a free-form response, which tolerates prose and markdown fences
// around the JSON.
func ExtractArray(text string) (string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return "", &MalformedPlanError{Index: -1, Reason: "no JSON array in response"}
	}
	return text[start : end+1], nil
}

// ParseResponse extracts and decodes the plan embedded in a text response.
func ParseResponse(text string) ([]goal.StepDraft, error) {
	raw, err := ExtractArray(text)
	if err != nil {
		return nil, err
	}
	return DecodePlan([]byte(raw))
}

// DecodePlan decodes and validates a JSON array of step objects. Title,
// description, duration and priority must be non-empty; order must be a
// number and may be zero. Unknown priorities become Medium.
func DecodePlan(raw []byte) ([]goal.StepDraft, error) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &MalformedPlanError{Index: -1, Reason: err.Error()}
	}
	if len(items) == 0 {
		return nil, &MalformedPlanError{Index: -1, Reason: "empty plan"}
	}

	drafts := make([]goal.StepDraft, 0, len(items))
	for i, item := range items {
		d, err := decodeStep(item)
		if err != nil {
			return nil, &MalformedPlanError{Index: i, Reason: err.Error()}
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func decodeStep(item map[string]any) (goal.StepDraft, error) {
	var d goal.StepDraft
	if item == nil {
		return d, fmt.Errorf("not an object")
	}

	var err error
	if d.Title, err = textField(item, "title"); err != nil {
		return d, err
	}
	if d.Description, err = textField(item, "description"); err != nil {
		return d, err
	}
	if d.Duration, err = textField(item, "duration"); err != nil {
		return d, err
	}

	switch p := item["priority"].(type) {
	case nil:
		return d, fmt.Errorf("missing priority")
	case string:
		if p == "" {
			return d, fmt.Errorf("missing priority")
		}
		d.Priority = normalizePriority(goal.Priority(p))
	default:
		d.Priority = goal.PriorityMedium
	}

	if d.Order, err = orderField(item); err != nil {
		return d, err
	}
	return d, nil
}

func normalizePriority(p goal.Priority) goal.Priority {
	if p.Valid() {
		return p
	}
	return goal.PriorityMedium
}

func textField(item map[string]any, key string) (string, error) {
	switch v := item[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("missing %s", key)
		}
		return v, nil
	case float64:
		if v == 0 {
			return "", fmt.Errorf("missing %s", key)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("missing %s", key)
	default:
		return "", fmt.Errorf("%s must be text", key)
	}
}

func orderField(item map[string]any) (int, error) {
	switch v := item["order"].(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("order must be a number")
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("missing order")
	default:
		return 0, fmt.Errorf("order must be a number")
	}
}
