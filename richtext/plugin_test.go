package richtext

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu    sync.Mutex
	files []File
	attrs ImageAttrs
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, file File) (ImageAttrs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.files = append(f.files, file)
	if f.err != nil {
		return ImageAttrs{}, f.err
	}
	return f.attrs, nil
}

func (f *fakeUploader) calls() []File {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]File, len(f.files))
	copy(out, f.files)
	return out
}

func newTestPlugin(t testing.TB, uploader Uploader, onResult func(UploadOutcome)) (*ImageUploadPlugin, *Editor) {
	t.Helper()

	editor := NewEditor(NewDoc(), nil)
	plugin, err := NewImageUploadPlugin(PluginConfig{
		Editor:   editor,
		Uploader: uploader,
		OnResult: onResult,
	})
	require.NoError(t, err)

	return plugin, editor
}

func TestHandlePasteWithoutImageIsUnhandled(t *testing.T) {
	uploader := &fakeUploader{}
	plugin, _ := newTestPlugin(t, uploader, nil)

	handled := plugin.HandlePaste(context.Background(), ClipboardEvent{Items: []ClipboardItem{
		{MediaType: "text/plain", File: &File{Name: "note.txt"}},
		{MediaType: "text/html", File: &File{Name: "note.html"}},
	}})

	assert.False(t, handled)
	plugin.Wait()
	assert.Empty(t, uploader.calls())
}

func TestHandlePasteUploadsFirstImageOnly(t *testing.T) {
	uploader := &fakeUploader{attrs: ImageAttrs{Src: "https://cdn/a.png"}}
	plugin, _ := newTestPlugin(t, uploader, nil)

	handled := plugin.HandlePaste(context.Background(), ClipboardEvent{Items: []ClipboardItem{
		{MediaType: "text/plain", File: &File{Name: "note.txt"}},
		{MediaType: "image/png", File: &File{Name: "first.png", MediaType: "image/png"}},
		{MediaType: "image/jpeg", File: &File{Name: "second.jpg", MediaType: "image/jpeg"}},
	}})

	assert.True(t, handled)
	plugin.Wait()

	calls := uploader.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "first.png", calls[0].Name)
}

func TestHandlePasteNilFileIsHandledNoOp(t *testing.T) {
	uploader := &fakeUploader{}
	plugin, editor := newTestPlugin(t, uploader, nil)

	handled := plugin.HandlePaste(context.Background(), ClipboardEvent{Items: []ClipboardItem{
		{MediaType: "image/png", File: nil},
	}})

	assert.True(t, handled)
	plugin.Wait()
	assert.Empty(t, uploader.calls())
	assert.Empty(t, editor.Doc().Content)
}

func TestHandleDropWithoutImageIsUnhandled(t *testing.T) {
	uploader := &fakeUploader{}
	plugin, _ := newTestPlugin(t, uploader, nil)

	handled := plugin.HandleDrop(context.Background(), DropEvent{Files: []*File{
		{Name: "report.pdf", MediaType: "application/pdf"},
	}})

	assert.False(t, handled)
	plugin.Wait()
	assert.Empty(t, uploader.calls())
}

func TestHandleDropUploadsFirstImage(t *testing.T) {
	uploader := &fakeUploader{attrs: ImageAttrs{Src: "https://cdn/a.png", Alt: "a"}}
	plugin, editor := newTestPlugin(t, uploader, nil)

	handled := plugin.HandleDrop(context.Background(), DropEvent{Files: []*File{
		{Name: "report.pdf", MediaType: "application/pdf"},
		{Name: "photo.png", MediaType: "image/png", Data: []byte{1}},
		{Name: "extra.png", MediaType: "image/png"},
	}})

	assert.True(t, handled)
	plugin.Wait()

	calls := uploader.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "photo.png", calls[0].Name)

	doc := editor.Doc()
	require.Len(t, doc.Content, 1)
	assert.Equal(t, "https://cdn/a.png", doc.Content[0].GetStringAttr("src", ""))
}

func TestUploadFailureInsertsNothingAndReportsOutcome(t *testing.T) {
	uploadErr := errors.New("upload rejected")
	uploader := &fakeUploader{err: uploadErr}

	outcomes := make(chan UploadOutcome, 1)
	plugin, editor := newTestPlugin(t, uploader, func(outcome UploadOutcome) {
		outcomes <- outcome
	})

	handled := plugin.HandlePaste(context.Background(), ClipboardEvent{Items: []ClipboardItem{
		{MediaType: "image/png", File: &File{Name: "photo.png", MediaType: "image/png"}},
	}})
	require.True(t, handled)
	plugin.Wait()

	outcome := <-outcomes
	assert.ErrorIs(t, outcome.Err, uploadErr)
	assert.False(t, outcome.Inserted)
	assert.Empty(t, editor.Doc().Content)
}

func TestUploadSuccessOutcomeCarriesAttrs(t *testing.T) {
	uploader := &fakeUploader{attrs: ImageAttrs{Src: "https://cdn/x.png", Alt: "x", Title: "x"}}

	outcomes := make(chan UploadOutcome, 1)
	plugin, editor := newTestPlugin(t, uploader, func(outcome UploadOutcome) {
		outcomes <- outcome
	})

	plugin.HandlePaste(context.Background(), ClipboardEvent{Items: []ClipboardItem{
		{MediaType: "image/png", File: &File{Name: "x.png", MediaType: "image/png"}},
	}})
	plugin.Wait()

	outcome := <-outcomes
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Inserted)
	assert.Equal(t, "https://cdn/x.png", outcome.Attrs.Src)

	doc := editor.Doc()
	require.Len(t, doc.Content, 1)
	assert.Equal(t, "x", doc.Content[0].GetStringAttr("alt", ""))
}

func TestConcurrentEventsEachUploadIndependently(t *testing.T) {
	uploader := &fakeUploader{attrs: ImageAttrs{Src: "https://cdn/x.png"}}
	plugin, editor := newTestPlugin(t, uploader, nil)

	for i := 0; i < 5; i++ {
		plugin.HandleDrop(context.Background(), DropEvent{Files: []*File{
			{Name: "photo.png", MediaType: "image/png"},
		}})
	}
	plugin.Wait()

	assert.Len(t, uploader.calls(), 5)
	assert.Len(t, editor.Doc().Content, 5)
}

func TestNewImageUploadPluginRequiresDependencies(t *testing.T) {
	_, err := NewImageUploadPlugin(PluginConfig{Uploader: &fakeUploader{}})
	assert.Error(t, err)

	_, err = NewImageUploadPlugin(PluginConfig{Editor: NewEditor(NewDoc(), nil)})
	assert.Error(t, err)
}
