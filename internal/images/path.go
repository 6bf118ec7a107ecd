// Package images serves profile photos to holders of a valid auth token.
package images

import (
	"errors"
	"path"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotFound     = errors.New("image not found")
)

const defaultContentType = "image/jpeg"

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".gif":  "image/gif",
}

// ValidatePath rejects requested paths that could leave the image root:
// absolute paths, NUL bytes and any ".." segment under either separator.
func ValidatePath(p string) error {
	if strings.ContainsRune(p, 0) {
		return ErrInvalidPath
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return ErrInvalidPath
	}
	if len(p) >= 2 && p[1] == ':' {
		return ErrInvalidPath
	}
	for _, segment := range strings.FieldsFunc(p, isSeparator) {
		if segment == ".." {
			return ErrInvalidPath
		}
	}
	return nil
}

// CleanName turns a validated request path into a slash-separated object
// name relative to the image root.
func CleanName(p string) string {
	name := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	if name == "." {
		return ""
	}
	return name
}

// ContentTypeFor maps a file extension to its image MIME type, defaulting to
// image/jpeg.
func ContentTypeFor(p string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(p))]; ok {
		return ct
	}
	return defaultContentType
}

// ProtectedURL rewrites a public image path such as "/images/ada.png" into
// the token-protected endpoint "/api/images/ada.png".
func ProtectedURL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	clean := strings.TrimPrefix(imagePath, "/")
	clean = strings.Replace(clean, "images/", "", 1)
	return "/api/images/" + clean
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
