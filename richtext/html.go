package richtext

import (
	"fmt"
	stdhtml "html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
)

// renderState accumulates warnings across one serialization pass.
type renderState struct {
	schema   *Schema
	config   Config
	warnings []Warning
}

func (s *renderState) addWarning(warnType WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:     warnType,
		NodeType: nodeType,
		Message:  message,
	})
}

// RenderHTML serializes a document to HTML.
func (sc *Schema) RenderHTML(doc Doc) (Result, error) {
	s := &renderState{schema: sc, config: sc.config}

	var sb strings.Builder
	for _, node := range doc.Content {
		out, err := s.renderNodeHTML(node)
		if err != nil {
			return Result{}, err
		}
		sb.WriteString(out)
	}

	return Result{Output: sb.String(), Warnings: s.warnings}, nil
}

func (s *renderState) renderNodeHTML(node Node) (string, error) {
	switch node.Type {
	case NodeParagraph:
		inner, err := s.renderInlineHTML(node.Content)
		if err != nil {
			return "", err
		}
		return "<p>" + inner + "</p>\n", nil

	case NodeHeading:
		level := node.GetIntAttr("level", 1)
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		inner, err := s.renderInlineHTML(node.Content)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("<h%d>%s</h%d>\n", level, inner, level), nil

	case NodeImage:
		return s.renderImageHTML(node) + "\n", nil

	case NodeRule:
		return "<hr>\n", nil

	case NodeHardBreak:
		return "<br>", nil

	case NodeText:
		return s.renderTextHTML(node)

	default:
		return s.renderUnknown(node)
	}
}

func (s *renderState) renderInlineHTML(content []Node) (string, error) {
	var sb strings.Builder
	for _, node := range content {
		out, err := s.renderNodeHTML(node)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (s *renderState) renderTextHTML(node Node) (string, error) {
	out := stdhtml.EscapeString(node.Text)

	// Wrap innermost-first so the first mark becomes the outermost tag.
	for i := len(node.Marks) - 1; i >= 0; i-- {
		mark := node.Marks[i]
		switch mark.Type {
		case MarkStrong:
			out = "<strong>" + out + "</strong>"
		case MarkEm:
			out = "<em>" + out + "</em>"
		case MarkCode:
			out = "<code>" + out + "</code>"
		case MarkLink:
			href := ""
			title := ""
			if mark.Attrs != nil {
				href, _ = mark.Attrs["href"].(string)
				title, _ = mark.Attrs["title"].(string)
			}
			open := `<a href="` + stdhtml.EscapeString(href) + `"`
			if title != "" {
				open += ` title="` + stdhtml.EscapeString(title) + `"`
			}
			out = open + ">" + out + "</a>"
		default:
			s.addWarning(WarningUnknownMark, node.Type, fmt.Sprintf("unknown mark type %q; formatting dropped", mark.Type))
		}
	}

	return out, nil
}

// renderImageHTML emits an img tag merging the schema's configured default
// attributes with the node's own attributes. Instance attributes win. A
// missing src is accepted and renders a broken reference.
func (s *renderState) renderImageHTML(node Node) string {
	merged := map[string]any{}
	if spec, ok := s.schema.Spec(NodeImage); ok {
		for key, value := range spec.Attrs {
			if value != nil {
				merged[key] = value
			}
		}
	}
	for key, value := range s.config.ImageDefaults {
		merged[key] = value
	}
	for key, value := range node.Attrs {
		if value != nil {
			merged[key] = value
		}
	}

	var sb strings.Builder
	sb.WriteString("<img")

	writeAttr := func(key string, value any) {
		sb.WriteString(" ")
		sb.WriteString(key)
		sb.WriteString(`="`)
		sb.WriteString(stdhtml.EscapeString(formatAttrValue(value)))
		sb.WriteString(`"`)
	}

	written := map[string]bool{}
	for _, key := range []string{"src", "alt", "title", "width", "height"} {
		if value, ok := merged[key]; ok {
			writeAttr(key, value)
			written[key] = true
		}
	}

	var extras []string
	for key := range merged {
		if !written[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		writeAttr(key, merged[key])
	}

	sb.WriteString(">")
	return sb.String()
}

func (s *renderState) renderUnknown(node Node) (string, error) {
	switch s.config.UnknownNodes {
	case UnknownError:
		return "", fmt.Errorf("unknown node type: %s", node.Type)
	case UnknownSkip:
		s.addWarning(WarningUnknownNode, node.Type, "unknown node skipped")
		return "", nil
	default:
		s.addWarning(WarningUnknownNode, node.Type, "unknown node rendered as placeholder")
		return fmt.Sprintf("[Unknown node: %s]", node.Type), nil
	}
}

func formatAttrValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// htmlParser builds a document tree from markup. Inline content accumulates
// into a run that flushes to a paragraph at block boundaries; image tags are
// block-level in this schema and always flush the current run.
type htmlParser struct {
	blocks []Node
	run    []Node
}

// ParseHTML parses markup into a document. Any img tag encountered maps to an
// image node, its attributes pulled from the corresponding markup attributes.
func (sc *Schema) ParseHTML(r io.Reader) (Doc, error) {
	root, err := xhtml.Parse(r)
	if err != nil {
		return Doc{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	p := &htmlParser{}
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	p.walkChildren(body, nil)
	p.flush()

	return NewDoc(p.blocks...), nil
}

func (p *htmlParser) flush() {
	if len(p.run) == 0 {
		return
	}
	p.blocks = append(p.blocks, Node{Type: NodeParagraph, Content: p.run})
	p.run = nil
}

func (p *htmlParser) walkChildren(parent *xhtml.Node, marks []Mark) {
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		p.walkNode(child, marks)
	}
}

func (p *htmlParser) walkNode(n *xhtml.Node, marks []Mark) {
	switch n.Type {
	case xhtml.TextNode:
		text := whitespacePattern.ReplaceAllString(n.Data, " ")
		if strings.TrimSpace(text) == "" {
			return
		}
		p.run = append(p.run, Node{Type: NodeText, Text: text, Marks: cloneMarks(marks)})

	case xhtml.ElementNode:
		switch n.Data {
		case "img":
			p.flush()
			p.blocks = append(p.blocks, imageNodeFromTag(n))

		case "p":
			p.flush()
			p.walkChildren(n, marks)
			p.flush()

		case "h1", "h2", "h3", "h4", "h5", "h6":
			p.flush()
			saved := p.run
			p.run = nil
			p.walkChildren(n, marks)
			content := p.run
			p.run = saved
			level := int(n.Data[1] - '0')
			p.blocks = append(p.blocks, Node{
				Type:    NodeHeading,
				Attrs:   map[string]any{"level": level},
				Content: content,
			})

		case "br":
			p.run = append(p.run, Node{Type: NodeHardBreak})

		case "hr":
			p.flush()
			p.blocks = append(p.blocks, Node{Type: NodeRule})

		case "strong", "b":
			p.walkChildren(n, append(cloneMarks(marks), Mark{Type: MarkStrong}))

		case "em", "i":
			p.walkChildren(n, append(cloneMarks(marks), Mark{Type: MarkEm}))

		case "code":
			p.walkChildren(n, append(cloneMarks(marks), Mark{Type: MarkCode}))

		case "a":
			attrs := map[string]any{"href": tagAttr(n, "href")}
			if title := tagAttr(n, "title"); title != "" {
				attrs["title"] = title
			}
			p.walkChildren(n, append(cloneMarks(marks), Mark{Type: MarkLink, Attrs: attrs}))

		case "script", "style", "head", "template":
			return

		default:
			// Transparent container.
			p.walkChildren(n, marks)
		}

	case xhtml.DocumentNode:
		p.walkChildren(n, marks)
	}
}

func imageNodeFromTag(n *xhtml.Node) Node {
	attrs := map[string]any{}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "width", "height":
			if parsed, err := strconv.Atoi(strings.TrimSpace(attr.Val)); err == nil {
				attrs[attr.Key] = parsed
				continue
			}
			attrs[attr.Key] = attr.Val
		default:
			attrs[attr.Key] = attr.Val
		}
	}
	if len(attrs) == 0 {
		attrs = nil
	}

	return Node{Type: NodeImage, Attrs: attrs}
}

func tagAttr(n *xhtml.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func findElement(n *xhtml.Node, name string) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.Data == name {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, name); found != nil {
			return found
		}
	}
	return nil
}
