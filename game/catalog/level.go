package catalog

import (
	"fmt"

	"github.com/wricardo/superslide/game/engine"
)

// Level is one catalog entry as authored on disk. A level gives its layout
// either as Rows (one code string per board row) or as Cells (20 tags, emoji
// or color names); Rows wins when both are set.
type Level struct {
	Number int      `yaml:"number" json:"number"`
	Name   string   `yaml:"name" json:"name"`
	Par    int      `yaml:"par,omitempty" json:"par,omitempty"`
	Rows   []string `yaml:"rows,omitempty" json:"rows,omitempty"`
	Cells  []string `yaml:"cells,omitempty" json:"cells,omitempty"`

	layout engine.Layout
}

// Layout returns the decoded layout. It is only populated on levels
// returned by a Manager.
func (l *Level) Layout() engine.Layout {
	out := make(engine.Layout, len(l.layout))
	copy(out, l.layout)
	return out
}

// decode fills in the layout from Rows or Cells and validates it.
func (l *Level) decode() error {
	var layout engine.Layout
	switch {
	case len(l.Rows) > 0:
		rows, err := engine.LayoutFromRows(l.Rows)
		if err != nil {
			return err
		}
		layout = rows
	case len(l.Cells) > 0:
		layout = make(engine.Layout, 0, len(l.Cells))
		for _, tag := range l.Cells {
			c, err := engine.NormalizeTag(tag)
			if err != nil {
				return err
			}
			layout = append(layout, c)
		}
	default:
		return fmt.Errorf("level %d has no rows or cells", l.Number)
	}

	if err := engine.ValidateLayout(layout); err != nil {
		return err
	}
	if l.Par < 0 {
		return fmt.Errorf("level %d has negative par %d", l.Number, l.Par)
	}
	l.layout = layout
	return nil
}
