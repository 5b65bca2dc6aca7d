package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/timebox/internal/models"
)

// ErrMalformed is returned when a stored schedule document is not a JSON object
var ErrMalformed = errors.New("malformed schedule document")

// Kind tags the shape a slot had in storage
type Kind int

const (
	// KindOther covers null, numbers, arrays and anything unreadable
	KindOther Kind = iota
	// KindLegacy is a bare string holding the task
	KindLegacy
	// KindStructured is a {task, checked, color} object
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindStructured:
		return "structured"
	default:
		return "other"
	}
}

// RawSlot is a stored slot value after decoding. Slot is already the
// structured form; Kind only records where it came from.
type RawSlot struct {
	Kind Kind
	Slot models.Slot
}

// Raw is a decoded schedule document, keyed as stored
type Raw map[string]RawSlot

// Decode parses a stored schedule document. Empty input and JSON null yield a
// nil Raw. A document that is itself a JSON string is unwrapped once, since
// older writers stored the serialized object as text.
func Decode(data []byte) (Raw, error) {
	return decode(data, true)
}

func decode(data []byte, unwrap bool) (Raw, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if unwrap && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return decode([]byte(inner), false)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw := make(Raw, len(fields))
	for key, value := range fields {
		raw[key] = decodeSlot(value)
	}
	return raw, nil
}

func decodeSlot(value json.RawMessage) RawSlot {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return RawSlot{Kind: KindOther, Slot: models.EmptySlot()}
	}

	switch value[0] {
	case '"':
		var task string
		if err := json.Unmarshal(value, &task); err != nil {
			return RawSlot{Kind: KindOther, Slot: models.EmptySlot()}
		}
		slot := models.EmptySlot()
		slot.Task = task
		return RawSlot{Kind: KindLegacy, Slot: slot}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(value, &fields); err != nil {
			return RawSlot{Kind: KindOther, Slot: models.EmptySlot()}
		}
		return RawSlot{Kind: KindStructured, Slot: structuredSlot(fields)}
	default:
		return RawSlot{Kind: KindOther, Slot: models.EmptySlot()}
	}
}

// structuredSlot reads each field on its own so one bad field only resets
// that field.
func structuredSlot(fields map[string]json.RawMessage) models.Slot {
	slot := models.EmptySlot()

	if v, ok := fields["task"]; ok {
		var task string
		if json.Unmarshal(v, &task) == nil {
			slot.Task = task
		}
	}
	if v, ok := fields["checked"]; ok {
		var checked bool
		if json.Unmarshal(v, &checked) == nil {
			slot.Checked = checked
		}
	}
	if v, ok := fields["color"]; ok {
		var color string
		if json.Unmarshal(v, &color) == nil {
			slot.Color = models.CoerceColor(color)
		}
	}
	return slot
}

// Encode serializes s in the structured form. Every canonical key is written
// exactly once; other keys are dropped and invalid colors become white.
func Encode(s models.Schedule) ([]byte, error) {
	out := make(map[string]models.Slot, SlotCount)
	for _, key := range canonical {
		slot, ok := s[key]
		if !ok {
			slot = models.EmptySlot()
		}
		slot.Color = models.CoerceColor(string(slot.Color))
		out[key] = slot
	}
	// encoding/json sorts map keys, and zero padded HH:MM sorts by time
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}
	return data, nil
}
