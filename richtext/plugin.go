package richtext

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// File is the binary payload behind a clipboard item or a drop.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// ClipboardItem models one entry of a paste event's clipboard data. File is
// nil when the item has no backing file.
type ClipboardItem struct {
	MediaType string
	File      *File
}

// ClipboardEvent models a paste event seen by the editor view.
type ClipboardEvent struct {
	Items []ClipboardItem
}

// DropEvent models a drop event seen by the editor view.
type DropEvent struct {
	Files []*File
}

// Uploader stores a pasted or dropped image remotely and returns the
// attributes of the image node to insert on success.
type Uploader interface {
	Upload(ctx context.Context, file File) (ImageAttrs, error)
}

// UploadOutcome is the typed result of one upload attempt, delivered to the
// host so it can surface feedback. Err is nil on success.
type UploadOutcome struct {
	File     File
	Attrs    ImageAttrs
	Inserted bool
	Err      error
}

// PluginConfig configures an ImageUploadPlugin.
type PluginConfig struct {
	Editor   *Editor
	Uploader Uploader
	Logger   *zap.Logger
	// OnResult, when set, receives the outcome of every upload attempt.
	OnResult func(UploadOutcome)
}

// ImageUploadPlugin intercepts paste and drop events on the editor view. When
// an event carries image content it suppresses default handling and forwards
// the first image file to the uploader; the resulting image node is inserted
// at the current selection. Each accepted event runs one independent upload;
// concurrent uploads insert in response-arrival order.
type ImageUploadPlugin struct {
	editor   *Editor
	uploader Uploader
	log      *zap.Logger
	onResult func(UploadOutcome)
	wg       sync.WaitGroup
}

// NewImageUploadPlugin creates the paste/drop interception plugin.
func NewImageUploadPlugin(config PluginConfig) (*ImageUploadPlugin, error) {
	if config.Editor == nil {
		return nil, errors.New("plugin requires an editor")
	}
	if config.Uploader == nil {
		return nil, errors.New("plugin requires an uploader")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &ImageUploadPlugin{
		editor:   config.Editor,
		uploader: config.Uploader,
		log:      config.Logger,
		onResult: config.OnResult,
	}, nil
}

// HandlePaste inspects clipboard items. The first item whose media type
// begins with "image/" is uploaded and the event reported handled; further
// images in the same event are ignored. Without an image item the event is
// reported unhandled so default paste behavior proceeds.
func (p *ImageUploadPlugin) HandlePaste(ctx context.Context, event ClipboardEvent) bool {
	for _, item := range event.Items {
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		if item.File == nil {
			// Handled, but nothing to upload.
			p.log.Warn("clipboard image item has no backing file",
				zap.String("mediaType", item.MediaType),
			)
			return true
		}
		p.startUpload(ctx, *item.File)
		return true
	}
	return false
}

// HandleDrop inspects dropped files. The first file whose media type begins
// with "image/" is uploaded and the event reported handled; otherwise the
// event is reported unhandled.
func (p *ImageUploadPlugin) HandleDrop(ctx context.Context, event DropEvent) bool {
	for _, file := range event.Files {
		if file == nil || !strings.HasPrefix(file.MediaType, "image/") {
			continue
		}
		p.startUpload(ctx, *file)
		return true
	}
	return false
}

// Wait blocks until all in-flight uploads complete.
func (p *ImageUploadPlugin) Wait() {
	p.wg.Wait()
}

func (p *ImageUploadPlugin) startUpload(ctx context.Context, file File) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runUpload(ctx, file)
	}()
}

func (p *ImageUploadPlugin) runUpload(ctx context.Context, file File) {
	log := p.log.With(
		zap.String("filename", file.Name),
		zap.String("mediaType", file.MediaType),
	)

	attrs, err := p.uploader.Upload(ctx, file)
	if err != nil {
		log.Error("image upload failed", zap.Error(err))
		p.deliver(UploadOutcome{File: file, Err: err})
		return
	}

	inserted := p.editor.InsertImage(attrs)
	if !inserted {
		log.Error("image node insertion rejected", zap.String("src", attrs.Src))
	} else {
		log.Info("inserted uploaded image", zap.String("src", attrs.Src))
	}

	p.deliver(UploadOutcome{File: file, Attrs: attrs, Inserted: inserted})
}

func (p *ImageUploadPlugin) deliver(outcome UploadOutcome) {
	if p.onResult == nil {
		return
	}
	p.onResult(outcome)
}
