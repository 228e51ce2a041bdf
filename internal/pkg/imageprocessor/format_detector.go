package imageprocessor

import (
	"net/http"
	"strings"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectExtension sniffs the first bytes of a file and returns the extension
// of a supported raster format, or "" for anything else.
func DetectExtension(head []byte) string {
	ct := http.DetectContentType(head)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return extensions[ct]
}
