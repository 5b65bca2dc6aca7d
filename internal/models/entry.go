package models

// Slot is one half-hour cell of the schedule grid
type Slot struct {
	Task    string `json:"task"`
	Checked bool   `json:"checked"`
	Color   Color  `json:"color"`
}

// EmptySlot returns the slot every unset key defaults to
func EmptySlot() Slot {
	return Slot{Color: DefaultColor}
}

// IsEmpty reports whether the slot carries nothing worth showing
func (s Slot) IsEmpty() bool {
	return s.Task == "" && !s.Checked && s.Color.Normalize() == DefaultColor
}

// Schedule maps a slot key (HH:MM) to its slot
type Schedule map[string]Slot

// Clone returns a copy that can be mutated without touching the receiver
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Entry is everything recorded for one calendar date
type Entry struct {
	ID            int64    `json:"id,omitempty"`
	Date          string   `json:"date"` // YYYY-MM-DD format
	TopPriorities string   `json:"top_priorities"`
	BrainDump     string   `json:"brain_dump"`
	Schedule      Schedule `json:"schedule"`
}

// Persisted reports whether the entry has a row in the store
func (e Entry) Persisted() bool {
	return e.ID != 0
}

// Summary is a short label for history listings
func (e Entry) Summary() string {
	return FirstLine(e.TopPriorities)
}

// FilledSlots counts slots holding a task
func (e Entry) FilledSlots() int {
	n := 0
	for _, s := range e.Schedule {
		if s.Task != "" {
			n++
		}
	}
	return n
}

// DoneSlots counts checked slots holding a task
func (e Entry) DoneSlots() int {
	n := 0
	for _, s := range e.Schedule {
		if s.Task != "" && s.Checked {
			n++
		}
	}
	return n
}

// ValidDate reports whether d is a YYYY-MM-DD calendar date
func ValidDate(d string) bool {
	_, err := ParseDate(d)
	return err == nil
}
