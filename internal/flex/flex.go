// Package flex builds LINE Flex Message documents for order notifications.
//
// The node types mirror the subset of the Flex Message JSON schema that the
// order cards use. Field order and omission rules are fixed so that the same
// input always serialises to the same bytes.
package flex

// Node types.
const (
	TypeFlex      = "flex"
	TypeBubble    = "bubble"
	TypeBox       = "box"
	TypeText      = "text"
	TypeSpan      = "span"
	TypeSeparator = "separator"
)

// Box layouts.
const (
	LayoutVertical   = "vertical"
	LayoutHorizontal = "horizontal"
)

// Message is the top-level push payload element.
type Message struct {
	Type     string  `json:"type"`
	AltText  string  `json:"altText"`
	Contents *Bubble `json:"contents"`
}

// Bubble is a single card with header, body and footer blocks.
type Bubble struct {
	Type   string `json:"type"`
	Size   string `json:"size,omitempty"`
	Header *Node  `json:"header,omitempty"`
	Body   *Node  `json:"body,omitempty"`
	Footer *Node  `json:"footer,omitempty"`
}

// Node is a box, text, span or separator component. Only the fields relevant
// to the node's type are set; Flex is a pointer because flex 0 is meaningful.
type Node struct {
	Type            string  `json:"type"`
	Layout          string  `json:"layout,omitempty"`
	Contents        []*Node `json:"contents,omitempty"`
	Text            string  `json:"text,omitempty"`
	Size            string  `json:"size,omitempty"`
	Color           string  `json:"color,omitempty"`
	Weight          string  `json:"weight,omitempty"`
	Align           string  `json:"align,omitempty"`
	Wrap            bool    `json:"wrap,omitempty"`
	Flex            *int    `json:"flex,omitempty"`
	Margin          string  `json:"margin,omitempty"`
	Spacing         string  `json:"spacing,omitempty"`
	JustifyContent  string  `json:"justifyContent,omitempty"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	PaddingAll      string  `json:"paddingAll,omitempty"`
}

// Separator returns a separator node with the given margin.
func Separator(margin string) *Node {
	return &Node{Type: TypeSeparator, Margin: margin}
}

func flex(n int) *int {
	return &n
}
