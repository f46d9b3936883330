package storage

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectContentType determines the MIME type of an object.
//
// Priority: the provided type, then the key extension, then sniffing the
// first 512 bytes of data, then "application/octet-stream".
func DetectContentType(providedType, filename string, data io.Reader) string {
	if providedType != "" {
		return providedType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	if data != nil {
		buffer := make([]byte, 512)
		n, err := io.ReadFull(data, buffer)
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return http.DetectContentType(buffer[:n])
		}
	}

	return "application/octet-stream"
}

// ExtensionForContentType returns the file extension stored for an image type.
func ExtensionForContentType(contentType string) string {
	baseType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))

	switch baseType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}

	if exts, err := mime.ExtensionsByType(baseType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
