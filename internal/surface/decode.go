package surface

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const dataURIPrefix = "data:"

// EncodeDataURI wraps data as a base64 data URI of the given media type.
func EncodeDataURI(mediaType string, data []byte) string {
	return dataURIPrefix + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the payload of a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(uri[len(dataURIPrefix):], ",")
	if !ok {
		return nil, errors.New("data URI has no payload")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URI %q is not base64", meta)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI payload: %w", err)
	}
	return data, nil
}

func decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty image")
	}
	if bytes.HasPrefix(data, []byte(dataURIPrefix)) {
		var err error
		if data, err = DecodeDataURI(string(data)); err != nil {
			return nil, "", err
		}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, "", errors.New("decode image: empty bounds")
	}
	return img, format, nil
}
