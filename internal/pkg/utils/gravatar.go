package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL returns the avatar of a reviewer email. Unknown addresses get
// the mystery person image.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 80
	}
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
