package flex

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAccentColor is the header background used when none is supplied.
const DefaultAccentColor = "#667eea"

const (
	greeting       = "お疲れさまです🙇🏻‍♂️"
	notesPrefix    = "備考: "
	submitterLabel = "発注者: "
	callToAction   = "上記発注お願い致します"
	cartIcon       = "🛒"
	itemSuffix     = "…"

	colorWhite     = "#ffffff"
	colorText      = "#333333"
	colorQuantity  = "#e74c3c"
	colorNotes     = "#666666"
	colorSubmitter = "#aaaaaa"
)

// Mode selects the card layout.
type Mode int

const (
	// ModeSingle renders one item as a compact card.
	ModeSingle Mode = iota
	// ModeBundle renders any number of items as rows of one card.
	ModeBundle
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeBundle:
		return "bundle"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var (
	ErrNoItems      = errors.New("flex: at least one item is required")
	ErrTooManyItems = errors.New("flex: single mode takes exactly one item")
	ErrUnknownMode  = errors.New("flex: unknown mode")
)

// Item is one order line as shown on a card.
type Item struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Notes    string
}

// Composer renders order items into Flex messages. It performs no I/O; the
// only input besides its arguments is the injected clock.
type Composer struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock sets the time source used for the date label.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		c.now = now
	}
}

// WithLocation sets the time zone of the date label.
func WithLocation(loc *time.Location) Option {
	return func(c *Composer) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// NewComposer creates a Composer using the wall clock in the local zone
// unless overridden.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DateLabel formats the current day as 2026年1月5日.
func (c *Composer) DateLabel() string {
	t := c.now().In(c.loc)
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}

// Compose renders items in the given mode. accent only applies to bundles.
func (c *Composer) Compose(mode Mode, items []Item, submitter, accent string) (*Message, error) {
	switch mode {
	case ModeSingle:
		if len(items) == 0 {
			return nil, ErrNoItems
		}
		if len(items) > 1 {
			return nil, ErrTooManyItems
		}
		return c.Single(items[0], submitter), nil
	case ModeBundle:
		return c.Bundle(items, submitter, accent)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

// Single renders one item as a compact card. The footer carries the notes
// line only when the item has notes.
func (c *Composer) Single(item Item, submitter string) *Message {
	qty := item.Quantity.String()

	header := &Node{
		Type:   TypeBox,
		Layout: LayoutVertical,
		Contents: []*Node{
			{Type: TypeText, Text: greeting, Weight: "bold", Size: "lg", Color: colorWhite},
			{Type: TypeText, Text: c.DateLabel(), Size: "sm", Color: colorWhite, Margin: "md"},
		},
		BackgroundColor: DefaultAccentColor,
		PaddingAll:      "lg",
	}

	body := &Node{
		Type:   TypeBox,
		Layout: LayoutHorizontal,
		Contents: []*Node{
			{
				Type:   TypeText,
				Text:   item.Name + itemSuffix,
				Size:   "md",
				Weight: "bold",
				Color:  colorText,
				Wrap:   true,
				Flex:   flex(3),
			},
			{
				Type:   TypeText,
				Text:   qty + " " + item.Unit,
				Size:   "md",
				Weight: "bold",
				Color:  colorText,
				Align:  "end",
				Flex:   flex(1),
				Contents: []*Node{
					{Type: TypeSpan, Text: qty, Color: colorQuantity, Weight: "bold"},
					{Type: TypeSpan, Text: " " + item.Unit, Color: colorText, Weight: "bold"},
				},
			},
		},
		PaddingAll: "lg",
		Spacing:    "md",
	}

	var footer *Node
	if item.Notes != "" {
		footer = &Node{
			Type:   TypeBox,
			Layout: LayoutVertical,
			Contents: []*Node{
				Separator("none"),
				{Type: TypeText, Text: item.Notes, Size: "xs", Color: colorNotes, Wrap: true, Margin: "md"},
				submitterLine(submitter, "end", "sm"),
			},
			PaddingAll: "md",
		}
	} else {
		footer = &Node{
			Type:   TypeBox,
			Layout: LayoutVertical,
			Contents: []*Node{
				Separator("none"),
				submitterLine(submitter, "end", "md"),
			},
			PaddingAll: "md",
		}
	}

	return &Message{
		Type:    TypeFlex,
		AltText: greeting + " 新規発注",
		Contents: &Bubble{
			Type:   TypeBubble,
			Size:   "kilo",
			Header: header,
			Body:   body,
			Footer: footer,
		},
	}
}

// Bundle renders all items as rows of a single card, separated in order.
// accent replaces the header colour when it is a valid #RRGGBB token.
func (c *Composer) Bundle(items []Item, submitter, accent string) (*Message, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	rows := make([]*Node, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			rows = append(rows, Separator("lg"))
		}
		rows = append(rows, bundleRow(item, i))
	}

	header := &Node{
		Type:   TypeBox,
		Layout: LayoutVertical,
		Contents: []*Node{
			{Type: TypeText, Text: greeting, Weight: "bold", Size: "lg", Color: colorWhite, Align: "center"},
			{Type: TypeText, Text: c.DateLabel(), Size: "sm", Color: colorWhite, Margin: "md", Align: "center"},
		},
		BackgroundColor: AccentColor(accent),
		PaddingAll:      "lg",
	}

	body := &Node{
		Type:       TypeBox,
		Layout:     LayoutVertical,
		Contents:   rows,
		PaddingAll: "lg",
	}

	footer := &Node{
		Type:   TypeBox,
		Layout: LayoutVertical,
		Contents: []*Node{
			Separator("none"),
			{
				Type:   TypeBox,
				Layout: LayoutHorizontal,
				Contents: []*Node{
					{Type: TypeText, Text: cartIcon, Size: "md", Flex: flex(0)},
					{Type: TypeText, Text: callToAction, Size: "sm", Color: colorText, Weight: "bold", Margin: "sm", Flex: flex(0)},
				},
				Margin:         "md",
				JustifyContent: "center",
			},
			submitterLine(submitter, "center", "md"),
		},
		PaddingAll: "md",
	}

	return &Message{
		Type:    TypeFlex,
		AltText: fmt.Sprintf("%s %d件の発注", greeting, len(items)),
		Contents: &Bubble{
			Type:   TypeBubble,
			Size:   "mega",
			Header: header,
			Body:   body,
			Footer: footer,
		},
	}, nil
}

func bundleRow(item Item, index int) *Node {
	margin := "lg"
	if index == 0 {
		margin = "none"
	}

	row := &Node{
		Type:   TypeBox,
		Layout: LayoutVertical,
		Contents: []*Node{
			{
				Type:   TypeBox,
				Layout: LayoutHorizontal,
				Contents: []*Node{
					{Type: TypeText, Text: item.Name + itemSuffix, Size: "md", Color: colorText, Wrap: true, Flex: flex(3), Weight: "bold"},
					{Type: TypeText, Text: item.Quantity.String(), Size: "md", Color: colorQuantity, Weight: "bold", Align: "end", Flex: flex(0)},
					{Type: TypeText, Text: " " + item.Unit, Size: "md", Color: colorText, Weight: "bold", Flex: flex(0)},
				},
				Spacing: "sm",
			},
		},
		Margin: margin,
	}

	if item.Notes != "" {
		row.Contents = append(row.Contents, &Node{
			Type:   TypeText,
			Text:   notesPrefix + item.Notes,
			Size:   "xs",
			Color:  colorNotes,
			Wrap:   true,
			Margin: "sm",
		})
	}

	return row
}

func submitterLine(name, align, margin string) *Node {
	return &Node{
		Type:   TypeText,
		Text:   submitterLabel + name,
		Size:   "xxs",
		Color:  colorSubmitter,
		Align:  align,
		Margin: margin,
	}
}

// AccentColor returns token when it is a #RRGGBB colour and the default
// accent otherwise.
func AccentColor(token string) string {
	if IsColor(token) {
		return token
	}
	return DefaultAccentColor
}

// IsColor reports whether token has the #RRGGBB form.
func IsColor(token string) bool {
	if len(token) != 7 || token[0] != '#' {
		return false
	}
	for _, r := range token[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
