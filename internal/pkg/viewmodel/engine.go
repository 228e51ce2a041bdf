package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/ManuelReschke/bizdir/internal/pkg/utils"
)

// NewEngine loads the html views below dir with the helpers the templates use.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("paragraphs", utils.Paragraphs)
	engine.AddFunc("truncate", utils.Truncate)
	engine.AddFunc("gravatar", utils.GravatarURL)
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	})
	engine.AddFunc("datetime", func(t *time.Time) string {
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	})
	engine.AddFunc("rating", func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	})
	engine.AddFunc("lower", strings.ToLower)
	return engine
}
