package richtext

import (
	"sync"

	"go.uber.org/zap"
)

// Editor hosts a document and the current content-insertion point. Document
// mutation happens through InsertContent, which applies atomically relative
// to other edits.
type Editor struct {
	mu        sync.Mutex
	doc       Doc
	selection int
	log       *zap.Logger
}

// NewEditor creates an editor over doc. A nil logger disables logging.
func NewEditor(doc Doc, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	if doc.Type == "" {
		doc.Type = NodeDoc
	}

	return &Editor{
		doc:       doc,
		selection: len(doc.Content),
		log:       log,
	}
}

// Doc returns a snapshot of the current document.
func (e *Editor) Doc() Doc {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := make([]Node, len(e.doc.Content))
	copy(content, e.doc.Content)
	return Doc{Type: e.doc.Type, Content: content}
}

// SetSelection moves the insertion point. Out-of-range positions clamp to the
// document bounds.
func (e *Editor) SetSelection(pos int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if pos > len(e.doc.Content) {
		pos = len(e.doc.Content)
	}
	e.selection = pos
}

// Selection returns the current insertion point.
func (e *Editor) Selection() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// InsertContent inserts a node at the current insertion point and advances
// the selection past it. Returns false when the node has no type.
func (e *Editor) InsertContent(node Node) bool {
	if node.Type == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.selection
	if pos > len(e.doc.Content) {
		pos = len(e.doc.Content)
	}

	content := make([]Node, 0, len(e.doc.Content)+1)
	content = append(content, e.doc.Content[:pos]...)
	content = append(content, node)
	content = append(content, e.doc.Content[pos:]...)
	e.doc.Content = content
	e.selection = pos + 1

	e.log.Debug("inserted node",
		zap.String("type", node.Type),
		zap.Int("position", pos),
	)
	return true
}

// InsertImage inserts a new image node at the current insertion point. Src is
// required; alt and title are optional.
func (e *Editor) InsertImage(attrs ImageAttrs) bool {
	if attrs.Src == "" {
		return false
	}
	return e.InsertContent(NewImageNode(attrs))
}
