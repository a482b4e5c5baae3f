package command

import (
	"encoding/json"
	"fmt"

	"web_controller/domain/entities"
)

// ParseReply decodes the agent's raw reply into the proposed actions.
//
// The reply must be a JSON object holding either "actions" (an array) or a
// single "action". A reply that is a JSON string is decoded once more, and
// only once: anything still not an object fails with ErrReplySchemaInvalid.
func ParseReply(raw string) ([]entities.Action, error) {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrReplyNotJSON, err)
	}

	if inner, ok := data.(string); ok {
		if err := json.Unmarshal([]byte(inner), &data); err != nil {
			return nil, fmt.Errorf("%w: reply was a JSON string but secondary parse failed: %v", entities.ErrReplyNotJSON, err)
		}
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", entities.ErrReplySchemaInvalid, data)
	}

	if list, ok := obj["actions"].([]any); ok {
		actions := make([]entities.Action, 0, len(list))
		for _, item := range list {
			actions = append(actions, toAction(item))
		}
		return actions, nil
	}

	if _, ok := obj["action"]; ok {
		return []entities.Action{toAction(obj)}, nil
	}

	return nil, fmt.Errorf("%w: %v", entities.ErrUnrecognizedSchema, obj)
}

// toAction converts a decoded JSON value. Entries that are not action objects
// come back with an empty name, which Encode skips.
func toAction(v any) entities.Action {
	data, err := json.Marshal(v)
	if err != nil {
		return entities.Action{}
	}
	var a entities.Action
	if err := json.Unmarshal(data, &a); err != nil {
		return entities.Action{}
	}
	return a
}
