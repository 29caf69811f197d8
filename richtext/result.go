package richtext

// Result holds the output of a serialization.
type Result struct {
	Output   string    `json:"output"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// WarningType categorizes serialization warnings.
type WarningType string

const (
	WarningUnknownNode      WarningType = "unknown_node"
	WarningUnknownMark      WarningType = "unknown_mark"
	WarningMissingAttribute WarningType = "missing_attribute"
)

// Warning represents a non-fatal issue encountered during serialization.
type Warning struct {
	Type     WarningType `json:"type"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}
