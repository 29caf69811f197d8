package evidence

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrNotDataURL indicates input that is not a base64 data URL.
var ErrNotDataURL = errors.New("not a base64 data URL")

// EncodeDataURL encodes file content as a base64 data URL. The media type is
// taken from mediaType when set, otherwise inferred from the filename
// extension and finally sniffed from the content.
func EncodeDataURL(filename, mediaType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("file read produced no content")
	}

	if mediaType == "" {
		mediaType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}

	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data)), nil
}

// SplitDataURL strips the data-URL prefix and returns the raw base64 payload.
func SplitDataURL(dataURL string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", fmt.Errorf("%w: missing data: prefix", ErrNotDataURL)
	}

	_, payload, found := strings.Cut(dataURL, ";base64,")
	if !found {
		return "", fmt.Errorf("%w: missing base64 marker", ErrNotDataURL)
	}

	return payload, nil
}

// FriendlyName derives a human-readable label from a filename by removing
// its extension.
func FriendlyName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
