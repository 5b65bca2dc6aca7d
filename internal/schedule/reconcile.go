package schedule

import "github.com/julianstephens/timebox/internal/models"

// Reconcile maps every key in keys to a slot, reading it from raw when
// present. A nil raw gives the empty grid. Keys in raw that are not in keys
// are ignored.
func Reconcile(raw Raw, keys []string) models.Schedule {
	out := make(models.Schedule, len(keys))
	for _, key := range keys {
		rs, ok := raw[key]
		if !ok || rs.Kind == KindOther {
			out[key] = models.EmptySlot()
			continue
		}
		out[key] = rs.Slot
	}
	return out
}

// Stats counts how a stored document lines up against the canonical grid
type Stats struct {
	Structured int
	Legacy     int
	Other      int
	Missing    int
	Unknown    int
}

// NeedsRewrite reports whether saving the document again would change its shape
func (s Stats) NeedsRewrite() bool {
	return s.Legacy > 0 || s.Other > 0 || s.Missing > 0 || s.Unknown > 0
}

// Inspect compares raw with the canonical keys
func Inspect(raw Raw) Stats {
	var st Stats
	for _, key := range canonical {
		rs, ok := raw[key]
		if !ok {
			st.Missing++
			continue
		}
		switch rs.Kind {
		case KindStructured:
			st.Structured++
		case KindLegacy:
			st.Legacy++
		default:
			st.Other++
		}
	}
	for key := range raw {
		if !IsKey(key) {
			st.Unknown++
		}
	}
	return st
}
