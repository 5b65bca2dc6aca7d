package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timebox/internal/models"
)

const customColor = "custom"

// palette is offered in the slot form; anything else goes through the hex input.
var palette = []struct {
	Name  string
	Color models.Color
}{
	{"White", "#ffffff"},
	{"Red", "#f28b82"},
	{"Orange", "#fbbc04"},
	{"Yellow", "#fff475"},
	{"Green", "#ccff90"},
	{"Teal", "#a7ffeb"},
	{"Blue", "#aecbfa"},
	{"Purple", "#d7aefb"},
	{"Gray", "#e8eaed"},
}

// SlotFormModel backs the huh form for one slot.
type SlotFormModel struct {
	Key    string
	Task   string
	Done   bool
	Choice string
	Custom string
}

func newSlotFormModel(key string, slot models.Slot) *SlotFormModel {
	fm := &SlotFormModel{
		Key:    key,
		Task:   slot.Task,
		Done:   slot.Checked,
		Choice: customColor,
		Custom: slot.Color.String(),
	}
	for _, p := range palette {
		if p.Color == slot.Color.Normalize() {
			fm.Choice = string(p.Color)
			fm.Custom = ""
			break
		}
	}
	return fm
}

// Slot converts the form values back into a slot.
func (fm *SlotFormModel) Slot() models.Slot {
	color := models.Color(fm.Choice)
	if fm.Choice == customColor {
		color = models.CoerceColor(fm.Custom)
	}
	return models.Slot{
		Task:    fm.Task,
		Checked: fm.Done,
		Color:   color,
	}
}

func NewSlotForm(fm *SlotFormModel, suggestions []string) *huh.Form {
	options := make([]huh.Option[string], 0, len(palette)+1)
	for _, p := range palette {
		options = append(options, huh.NewOption(p.Name, string(p.Color)))
	}
	options = append(options, huh.NewOption("Custom hex", customColor))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task for "+fm.Key).
				Suggestions(suggestions).
				Value(&fm.Task),
			huh.NewConfirm().
				Title("Done").
				Affirmative("Yes").
				Negative("No").
				Value(&fm.Done),
			huh.NewSelect[string]().
				Title("Color").
				Options(options...).
				Value(&fm.Choice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Hex color").
				Placeholder("#rrggbb").
				Value(&fm.Custom).
				Validate(func(s string) error {
					if _, err := models.ParseColor(s); err != nil {
						return fmt.Errorf("use #rgb or #rrggbb")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Choice != customColor }),
	).WithTheme(huh.ThemeDracula())
}
