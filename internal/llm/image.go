// ABOUTME: Image payloads for multimodal captioning requests
// ABOUTME: Loads rendered frames from disk and encodes them as base64 data URLs
package llm

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Image is one rendered frame sent to the captioning model
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// LoadImage reads an image file, inferring its MIME type from the extension or content
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	return Image{Name: filepath.Base(path), MIMEType: mt, Data: data}, nil
}

// DataURL returns the image as an RFC 2397 data URL
func (img Image) DataURL() string {
	mt := img.MIMEType
	if mt == "" {
		mt = "image/png"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
