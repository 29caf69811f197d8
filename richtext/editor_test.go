package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorInsertContentAtSelection(t *testing.T) {
	editor := NewEditor(NewDoc(
		Node{Type: NodeParagraph},
		Node{Type: NodeParagraph},
	), nil)
	editor.SetSelection(1)

	ok := editor.InsertContent(Node{Type: NodeRule})
	require.True(t, ok)

	doc := editor.Doc()
	require.Len(t, doc.Content, 3)
	assert.Equal(t, NodeRule, doc.Content[1].Type)
	assert.Equal(t, 2, editor.Selection())
}

func TestEditorInsertContentRejectsUntypedNode(t *testing.T) {
	editor := NewEditor(NewDoc(), nil)

	assert.False(t, editor.InsertContent(Node{}))
	assert.Empty(t, editor.Doc().Content)
}

func TestEditorInsertImageRequiresSrc(t *testing.T) {
	editor := NewEditor(NewDoc(), nil)

	assert.False(t, editor.InsertImage(ImageAttrs{Alt: "no source"}))
	assert.Empty(t, editor.Doc().Content)

	require.True(t, editor.InsertImage(ImageAttrs{Src: "https://cdn/x.png", Alt: "x"}))
	doc := editor.Doc()
	require.Len(t, doc.Content, 1)
	assert.Equal(t, NodeImage, doc.Content[0].Type)
	assert.Equal(t, "https://cdn/x.png", doc.Content[0].GetStringAttr("src", ""))
}

func TestEditorSelectionClamps(t *testing.T) {
	editor := NewEditor(NewDoc(Node{Type: NodeParagraph}), nil)

	editor.SetSelection(-5)
	assert.Equal(t, 0, editor.Selection())

	editor.SetSelection(99)
	assert.Equal(t, 1, editor.Selection())
}

func TestEditorDocReturnsSnapshot(t *testing.T) {
	editor := NewEditor(NewDoc(Node{Type: NodeParagraph}), nil)

	snapshot := editor.Doc()
	snapshot.Content[0].Type = "mutated"

	assert.Equal(t, NodeParagraph, editor.Doc().Content[0].Type)
}
