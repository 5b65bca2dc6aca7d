package schedule

import (
	"sort"
	"testing"
)

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != 38 {
		t.Fatalf("len(Keys()) = %d, want 38", len(keys))
	}
	if keys[0] != "05:00" {
		t.Errorf("first key = %q, want 05:00", keys[0])
	}
	if keys[len(keys)-1] != "23:30" {
		t.Errorf("last key = %q, want 23:30", keys[len(keys)-1])
	}
	if !sort.StringsAreSorted(keys) {
		t.Error("keys are not in ascending order")
	}

	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key %q", k)
		}
		seen[k] = true
	}
}

func TestKeysReturnsCopy(t *testing.T) {
	keys := Keys()
	keys[0] = "mutated"
	if Keys()[0] != "05:00" {
		t.Error("Keys() exposes the canonical slice")
	}
}

func TestIsKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"05:00", true},
		{"09:30", true},
		{"23:30", true},
		{"04:30", false},
		{"24:00", false},
		{"09:15", false},
		{"9:00", false},
		{"", false},
		{"ab:cd", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsKey(tt.key); got != tt.want {
				t.Errorf("IsKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestEmpty(t *testing.T) {
	s := Empty()
	if len(s) != SlotCount {
		t.Fatalf("len(Empty()) = %d, want %d", len(s), SlotCount)
	}
	for k, slot := range s {
		if !slot.IsEmpty() {
			t.Errorf("slot %s not empty: %+v", k, slot)
		}
	}
}

func TestSlotEnd(t *testing.T) {
	tests := map[string]string{
		"05:00": "05:30",
		"09:30": "10:00",
		"23:30": "24:00",
	}
	for start, want := range tests {
		got, err := SlotEnd(start)
		if err != nil {
			t.Fatalf("SlotEnd(%q) error: %v", start, err)
		}
		if got != want {
			t.Errorf("SlotEnd(%q) = %q, want %q", start, got, want)
		}
	}
	if _, err := SlotEnd("nope"); err == nil {
		t.Error("SlotEnd() on bad input should fail")
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "05:30", want: 330},
		{in: "24:00", want: 1440},
		{in: "24:30", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1230", wantErr: true},
		{in: "1:30", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMinutes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMinutes(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
