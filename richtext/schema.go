package richtext

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// UnknownPolicy controls behavior for unrecognized node types.
type UnknownPolicy string

const (
	UnknownError       UnknownPolicy = "error"
	UnknownSkip        UnknownPolicy = "skip"
	UnknownPlaceholder UnknownPolicy = "placeholder"
)

// Config holds schema configuration options.
type Config struct {
	// ImageDefaults are attributes merged into every serialized image tag.
	// Per-instance attributes win on conflict.
	ImageDefaults map[string]any `json:"imageDefaults,omitempty"`
	UnknownNodes  UnknownPolicy  `json:"unknownNodes,omitempty"`
	Logger        *zap.Logger    `json:"-"`
}

func (c Config) applyDefaults() Config {
	if c.UnknownNodes == "" {
		c.UnknownNodes = UnknownPlaceholder
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.UnknownNodes != UnknownError && c.UnknownNodes != UnknownSkip && c.UnknownNodes != UnknownPlaceholder {
		return fmt.Errorf("invalid unknownNodes policy %q", c.UnknownNodes)
	}
	for key := range c.ImageDefaults {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("imageDefaults contains empty key")
		}
	}

	return nil
}

func (c Config) clone() Config {
	cloned := c
	cloned.ImageDefaults = cloneAnyMap(c.ImageDefaults)
	return cloned
}

// NodeSpec describes a node type registered with the schema.
type NodeSpec struct {
	Name      string
	Block     bool
	Draggable bool
	// Attrs holds attribute names with their default values (nil = absent).
	Attrs map[string]any
}

// ImageNodeSpec returns the spec for the image node type: a block-level,
// draggable node with five attributes, all absent by default.
func ImageNodeSpec() NodeSpec {
	return NodeSpec{
		Name:      NodeImage,
		Block:     true,
		Draggable: true,
		Attrs: map[string]any{
			"src":    nil,
			"alt":    nil,
			"title":  nil,
			"width":  nil,
			"height": nil,
		},
	}
}

// ImageAttrs are the attributes accepted when constructing an image node.
// Src is required by the InsertImage command; the schema itself does not
// validate it (a missing or malformed src renders a broken reference).
type ImageAttrs struct {
	Src    string
	Alt    string
	Title  string
	Width  *int
	Height *int
}

// NewImageNode builds an image node from attrs. Unset optional attributes
// stay absent rather than serializing as empty strings.
func NewImageNode(attrs ImageAttrs) Node {
	nodeAttrs := map[string]any{
		"src": attrs.Src,
	}
	if attrs.Alt != "" {
		nodeAttrs["alt"] = attrs.Alt
	}
	if attrs.Title != "" {
		nodeAttrs["title"] = attrs.Title
	}
	if attrs.Width != nil {
		nodeAttrs["width"] = *attrs.Width
	}
	if attrs.Height != nil {
		nodeAttrs["height"] = *attrs.Height
	}

	return Node{Type: NodeImage, Attrs: nodeAttrs}
}

// Schema owns the registered node specs and the parse/serialize rules of the
// document model.
type Schema struct {
	config Config
	specs  map[string]NodeSpec
	parser goldmark.Markdown
}

// NewSchema creates a Schema with the given config.
func NewSchema(config Config) (*Schema, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	imageSpec := ImageNodeSpec()

	return &Schema{
		config: cfg,
		specs: map[string]NodeSpec{
			imageSpec.Name: imageSpec,
		},
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}, nil
}

// Spec returns the registered spec for a node type name.
func (sc *Schema) Spec(name string) (NodeSpec, bool) {
	spec, ok := sc.specs[name]
	return spec, ok
}

func cloneAnyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}

	return dst
}
