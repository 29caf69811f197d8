package richtext

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// importState carries one markdown import pass.
type importState struct {
	config   Config
	source   []byte
	warnings []Warning
}

func (s *importState) addWarning(warnType WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

// ImportResult holds an imported document plus any non-fatal warnings.
type ImportResult struct {
	Doc      Doc       `json:"doc"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ParseMarkdown parses GFM markdown into a document tree. Markdown image
// syntax maps to block-level image nodes; a paragraph containing images is
// split around them.
func (sc *Schema) ParseMarkdown(markdown string) (ImportResult, error) {
	s := &importState{config: sc.config, source: []byte(markdown)}

	root := sc.parser.Parser().Parse(text.NewReader(s.source))

	var blocks []Node
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		converted, err := s.convertBlock(child)
		if err != nil {
			return ImportResult{}, err
		}
		blocks = append(blocks, converted...)
	}

	return ImportResult{Doc: NewDoc(blocks...), Warnings: s.warnings}, nil
}

func (s *importState) convertBlock(node ast.Node) ([]Node, error) {
	switch n := node.(type) {
	case *ast.Paragraph:
		return s.convertInlineContainer(n, nil)

	case *ast.Heading:
		inner, err := s.convertInlineContainer(n, nil)
		if err != nil {
			return nil, err
		}
		var content []Node
		var blocks []Node
		for _, converted := range inner {
			if converted.Type == NodeParagraph {
				content = append(content, converted.Content...)
				continue
			}
			blocks = append(blocks, converted)
		}
		heading := Node{
			Type:    NodeHeading,
			Attrs:   map[string]any{"level": n.Level},
			Content: content,
		}
		return append([]Node{heading}, blocks...), nil

	case *ast.ThematicBreak:
		return []Node{{Type: NodeRule}}, nil

	default:
		switch s.config.UnknownNodes {
		case UnknownError:
			return nil, fmt.Errorf("unsupported markdown block: %s", node.Kind())
		default:
			s.addWarning(WarningUnknownNode, node.Kind().String(), "unsupported markdown block skipped")
			return nil, nil
		}
	}
}

// convertInlineContainer walks the inline children of a block. Text runs
// accumulate into paragraphs; images flush the current run and emit as
// block-level image nodes, preserving source order.
func (s *importState) convertInlineContainer(parent ast.Node, marks []Mark) ([]Node, error) {
	var blocks []Node
	var run []Node

	flush := func() {
		if len(run) == 0 {
			return
		}
		blocks = append(blocks, Node{Type: NodeParagraph, Content: run})
		run = nil
	}

	err := s.walkInlines(parent, marks, func(node Node, block bool) {
		if block {
			flush()
			blocks = append(blocks, node)
			return
		}
		run = append(run, node)
	})
	if err != nil {
		return nil, err
	}

	flush()
	return blocks, nil
}

func (s *importState) walkInlines(parent ast.Node, marks []Mark, emit func(node Node, block bool)) error {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			content := string(n.Value(s.source))
			if content != "" {
				emit(Node{Type: NodeText, Text: content, Marks: cloneMarks(marks)}, false)
			}
			if n.HardLineBreak() {
				emit(Node{Type: NodeHardBreak}, false)
			} else if n.SoftLineBreak() {
				emit(Node{Type: NodeText, Text: " ", Marks: cloneMarks(marks)}, false)
			}

		case *ast.String:
			emit(Node{Type: NodeText, Text: string(n.Value), Marks: cloneMarks(marks)}, false)

		case *ast.CodeSpan:
			if err := s.walkInlines(n, append(cloneMarks(marks), Mark{Type: MarkCode}), emit); err != nil {
				return err
			}

		case *ast.Emphasis:
			markType := MarkEm
			if n.Level == 2 {
				markType = MarkStrong
			}
			if err := s.walkInlines(n, append(cloneMarks(marks), Mark{Type: markType}), emit); err != nil {
				return err
			}

		case *ast.Link:
			attrs := map[string]any{"href": string(n.Destination)}
			if len(n.Title) > 0 {
				attrs["title"] = string(n.Title)
			}
			if err := s.walkInlines(n, append(cloneMarks(marks), Mark{Type: MarkLink, Attrs: attrs}), emit); err != nil {
				return err
			}

		case *ast.AutoLink:
			url := string(n.URL(s.source))
			emit(Node{
				Type:  NodeText,
				Text:  url,
				Marks: append(cloneMarks(marks), Mark{Type: MarkLink, Attrs: map[string]any{"href": url}}),
			}, false)

		case *ast.Image:
			emit(NewImageNode(ImageAttrs{
				Src:   string(n.Destination),
				Alt:   string(n.Text(s.source)),
				Title: string(n.Title),
			}), true)

		default:
			if s.config.UnknownNodes == UnknownError {
				return fmt.Errorf("unsupported markdown inline: %s", child.Kind())
			}
			s.addWarning(WarningUnknownNode, child.Kind().String(), "unsupported markdown inline skipped")
		}
	}

	return nil
}
