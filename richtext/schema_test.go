package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchema(t testing.TB, cfg Config) *Schema {
	t.Helper()

	schema, err := NewSchema(cfg)
	require.NoError(t, err)

	return schema
}

func TestImageNodeSpec(t *testing.T) {
	spec := ImageNodeSpec()

	assert.Equal(t, NodeImage, spec.Name)
	assert.True(t, spec.Block)
	assert.True(t, spec.Draggable)

	require.Len(t, spec.Attrs, 5)
	for _, key := range []string{"src", "alt", "title", "width", "height"} {
		value, ok := spec.Attrs[key]
		require.True(t, ok, "missing attribute %q", key)
		assert.Nil(t, value, "attribute %q should default to absent", key)
	}
}

func TestNewImageNodeOmitsUnsetAttrs(t *testing.T) {
	node := NewImageNode(ImageAttrs{Src: "https://cdn/x.png"})

	assert.Equal(t, NodeImage, node.Type)
	assert.Equal(t, map[string]any{"src": "https://cdn/x.png"}, node.Attrs)
}

func TestNewImageNodeFullAttrs(t *testing.T) {
	width := 640
	height := 480
	node := NewImageNode(ImageAttrs{
		Src:    "https://cdn/x.png",
		Alt:    "x",
		Title:  "x",
		Width:  &width,
		Height: &height,
	})

	assert.Equal(t, "https://cdn/x.png", node.GetStringAttr("src", ""))
	assert.Equal(t, "x", node.GetStringAttr("alt", ""))
	assert.Equal(t, "x", node.GetStringAttr("title", ""))
	assert.Equal(t, 640, node.GetIntAttr("width", 0))
	assert.Equal(t, 480, node.GetIntAttr("height", 0))
}

func TestConfigValidate(t *testing.T) {
	_, err := NewSchema(Config{UnknownNodes: "bogus"})
	assert.Error(t, err)

	_, err = NewSchema(Config{ImageDefaults: map[string]any{"  ": "x"}})
	assert.Error(t, err)

	_, err = NewSchema(Config{})
	assert.NoError(t, err)
}

func TestGetIntAttrAcceptsJSONNumbers(t *testing.T) {
	node := Node{Type: NodeImage, Attrs: map[string]any{"width": float64(800)}}

	assert.Equal(t, 800, node.GetIntAttr("width", 0))
	assert.Equal(t, 7, node.GetIntAttr("missing", 7))
}
