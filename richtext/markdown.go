package richtext

import (
	"fmt"
	"strings"
)

// RenderMarkdown serializes a document to GFM markdown.
func (sc *Schema) RenderMarkdown(doc Doc) (Result, error) {
	s := &renderState{schema: sc, config: sc.config}

	var sb strings.Builder
	for _, node := range doc.Content {
		out, err := s.renderNodeMarkdown(node)
		if err != nil {
			return Result{}, err
		}
		sb.WriteString(out)
	}

	output := strings.TrimRight(sb.String(), "\n")
	if output != "" {
		output += "\n"
	}

	return Result{Output: output, Warnings: s.warnings}, nil
}

func (s *renderState) renderNodeMarkdown(node Node) (string, error) {
	switch node.Type {
	case NodeParagraph:
		inner, err := s.renderInlineMarkdown(node.Content)
		if err != nil {
			return "", err
		}
		if inner == "" {
			return "", nil
		}
		return inner + "\n\n", nil

	case NodeHeading:
		level := node.GetIntAttr("level", 1)
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		inner, err := s.renderInlineMarkdown(node.Content)
		if err != nil {
			return "", err
		}
		if inner == "" {
			return "", nil
		}
		return strings.Repeat("#", level) + " " + inner + "\n\n", nil

	case NodeImage:
		return s.renderImageMarkdown(node)

	case NodeRule:
		return "---\n\n", nil

	case NodeHardBreak:
		return "\\\n", nil

	case NodeText:
		return node.Text, nil

	default:
		out, err := s.renderUnknown(node)
		if err != nil {
			return "", err
		}
		if out == "" {
			return "", nil
		}
		return out + "\n\n", nil
	}
}

// renderInlineMarkdown wraps text runs in mark delimiters. Adjacent text
// nodes carrying identical marks are merged first so delimiters do not
// reopen between them.
func (s *renderState) renderInlineMarkdown(content []Node) (string, error) {
	merged := mergeAdjacentText(content)

	var sb strings.Builder
	for _, node := range merged {
		if node.Type != NodeText {
			out, err := s.renderNodeMarkdown(node)
			if err != nil {
				return "", err
			}
			sb.WriteString(strings.TrimRight(out, "\n"))
			continue
		}

		out := node.Text
		for i := len(node.Marks) - 1; i >= 0; i-- {
			mark := node.Marks[i]
			switch mark.Type {
			case MarkStrong:
				out = "**" + out + "**"
			case MarkEm:
				out = "*" + out + "*"
			case MarkCode:
				out = "`" + out + "`"
			case MarkLink:
				href := ""
				title := ""
				if mark.Attrs != nil {
					href, _ = mark.Attrs["href"].(string)
					title, _ = mark.Attrs["title"].(string)
				}
				if href == "" {
					continue
				}
				if title != "" {
					out = "[" + out + "](" + href + ` "` + escapeTitle(title) + `")`
				} else {
					out = "[" + out + "](" + href + ")"
				}
			default:
				s.addWarning(WarningUnknownMark, NodeText, fmt.Sprintf("unknown mark type %q; formatting dropped", mark.Type))
			}
		}
		sb.WriteString(out)
	}

	return sb.String(), nil
}

func (s *renderState) renderImageMarkdown(node Node) (string, error) {
	src := node.GetStringAttr("src", "")
	alt := node.GetStringAttr("alt", "")
	title := node.GetStringAttr("title", "")

	if src == "" {
		if s.config.UnknownNodes == UnknownError {
			return "", fmt.Errorf("image node missing src")
		}
		s.addWarning(WarningMissingAttribute, node.Type, "image node missing src")
		return "[Image: (no src)]\n\n", nil
	}

	if title != "" {
		return fmt.Sprintf("![%s](%s \"%s\")\n\n", alt, src, escapeTitle(title)), nil
	}
	return fmt.Sprintf("![%s](%s)\n\n", alt, src), nil
}

func mergeAdjacentText(content []Node) []Node {
	var merged []Node
	for _, node := range content {
		if node.Type == NodeText && len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Type == NodeText && marksEqual(last.Marks, node.Marks) {
				last.Text += node.Text
				continue
			}
		}
		merged = append(merged, node)
	}
	return merged
}

func marksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type {
			return false
		}
		if !attrsEqual(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valueA := range a {
		valueB, ok := b[key]
		if !ok || valueA != valueB {
			return false
		}
	}
	return true
}

func escapeTitle(title string) string {
	escaped := strings.ReplaceAll(title, `\`, `\\`)
	return strings.ReplaceAll(escaped, `"`, `\"`)
}
