package models

import "fmt"

// Event keys emitted by the engine itself. External producers register their
// own keys via RegisterEventKey.
const (
	EventTaskReminder = "task.reminder"
	EventTaskDue      = "task.due"
)

// PayloadSpec describes the shape a payload must have for an event key.
// Keys not listed in Required are passed through untouched.
type PayloadSpec struct {
	Required []string
}

// eventKeys maps event key -> payload spec. Payloads are validated against
// the registered shape before storage so adapters can rely on the fields
// being present.
var eventKeys = map[string]PayloadSpec{
	EventTaskReminder: {Required: []string{"task_id", "task_title"}},
	EventTaskDue:      {Required: []string{"task_id", "task_title", "due_at"}},
}

// RegisterEventKey registers a payload spec for an event key. Registering an
// already-known key overwrites its spec.
func RegisterEventKey(key string, spec PayloadSpec) {
	eventKeys[key] = spec
}

// ValidatePayload checks payload against the registered spec for key.
// Unknown keys are accepted unvalidated so producers can introduce new
// events before the engine learns their shape.
func ValidatePayload(key string, payload map[string]string) error {
	spec, ok := eventKeys[key]
	if !ok {
		return nil
	}
	for _, field := range spec.Required {
		if _, ok := payload[field]; !ok {
			return fmt.Errorf("payload for event %q missing required field %q", key, field)
		}
	}
	return nil
}
