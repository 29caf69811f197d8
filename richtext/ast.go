package richtext

// Doc represents the root document node of a rich-text document.
type Doc struct {
	Type    string `json:"type"`
	Content []Node `json:"content,omitempty"`
}

// Node represents any node in the document tree (e.g., paragraph, text, image).
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Mark represents text formatting applied to a node (e.g., strong, em, link).
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node type names.
const (
	NodeDoc       = "doc"
	NodeParagraph = "paragraph"
	NodeHeading   = "heading"
	NodeText      = "text"
	NodeImage     = "image"
	NodeHardBreak = "hardBreak"
	NodeRule      = "rule"
)

// Mark type names.
const (
	MarkStrong = "strong"
	MarkEm     = "em"
	MarkCode   = "code"
	MarkLink   = "link"
)

// NewDoc creates a document with the given top-level content.
func NewDoc(content ...Node) Doc {
	return Doc{Type: NodeDoc, Content: content}
}

// GetStringAttr returns a string attribute or fallback when absent or mistyped.
func (n Node) GetStringAttr(key, fallback string) string {
	if n.Attrs == nil {
		return fallback
	}
	if value, ok := n.Attrs[key].(string); ok {
		return value
	}
	return fallback
}

// GetIntAttr returns an integer attribute or fallback when absent or mistyped.
// JSON-decoded numbers arrive as float64 and are accepted.
func (n Node) GetIntAttr(key string, fallback int) int {
	if n.Attrs == nil {
		return fallback
	}
	switch value := n.Attrs[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return fallback
	}
}

func cloneMarks(marks []Mark) []Mark {
	if marks == nil {
		return nil
	}

	cloned := make([]Mark, len(marks))
	copy(cloned, marks)
	return cloned
}
