package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/timebox/internal/constants"
)

// Color is an RGB color written as #rgb or #rrggbb
type Color string

// DefaultColor is white
const DefaultColor Color = constants.DefaultSlotColor

// ParseColor validates s and returns it unchanged apart from surrounding
// whitespace, so a saved color reads back exactly as it was written.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !isHexColor(s) {
		return "", fmt.Errorf("invalid color %q: expected #rgb or #rrggbb", s)
	}
	return Color(s), nil
}

// CoerceColor parses s, falling back to white
func CoerceColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		return DefaultColor
	}
	return c
}

// Valid reports whether c is a hex color
func (c Color) Valid() bool {
	return isHexColor(string(c))
}

// Normalize returns the lowercase #rrggbb form, white when invalid
func (c Color) Normalize() Color {
	s := string(c)
	if !isHexColor(s) {
		return DefaultColor
	}
	s = strings.ToLower(s)
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return Color(s)
}

// IsLight reports whether dark text reads better on c
func (c Color) IsLight() bool {
	n := string(c.Normalize())
	var r, g, b int
	if _, err := fmt.Sscanf(n, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return true
	}
	// ITU-R BT.601 luma
	return r*299+g*587+b*114 >= 128*1000
}

func (c Color) String() string {
	return string(c)
}

func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
