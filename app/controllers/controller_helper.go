package controllers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

const mainLayout = "layouts/main"

// render executes a view inside the main layout. The current user, the flash
// message, the CSRF token and the site settings are added to data.
func render(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	settings := models.GetDirectorySettings()
	data["User"] = usercontext.GetUserContext(c)
	data["Flash"] = flash.Get(c)
	data["Settings"] = settings
	data["CSRF"] = csrfToken(c)
	data["HCaptchaSiteKey"] = ""
	if hcaptcha.Enabled() {
		data["HCaptchaSiteKey"] = hcaptcha.SiteKey()
	}
	if title, ok := data["Title"].(string); ok && title != "" {
		data["Title"] = title + " | " + settings.SiteTitle
	} else {
		data["Title"] = settings.SiteTitle
	}
	return c.Render(view, data, mainLayout)
}

func csrfToken(c *fiber.Ctx) string {
	if token, ok := c.Locals("csrf").(string); ok {
		return token
	}
	return ""
}

// notFound renders the 404 page with status 404.
func notFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return render(c, "errors/404", fiber.Map{"Title": "Page not found"})
}

func jsonSuccess(c *fiber.Ctx, message string, extra fiber.Map) error {
	body := fiber.Map{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// GetClientIP returns the client address, preferring the proxy headers
// Cloudflare and nginx set.
func GetClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	// IPv4-mapped IPv6
	return strings.TrimPrefix(c.IP(), "::ffff:")
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseID(s string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// formIDs reads a repeated form field (ids=1&ids=2) or a comma separated list.
func formIDs(c *fiber.Ctx, key string) []uint {
	var ids []uint
	for _, raw := range c.Request().PostArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if id := parseID(part); id != 0 {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		for _, part := range strings.Split(c.Query(key), ",") {
			if id := parseID(part); id != 0 {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	u, err := url.Parse(next)
	if err != nil || next == "" || u.IsAbs() || u.Host != "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func pageNumber(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Pagination is the pager rendered below tables and archives.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
	BaseURL    string
}

func newPagination(page, perPage int, total int64, baseURL string) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages, BaseURL: baseURL}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }
func (p Pagination) PrevURL() string {
	return p.url(p.Page - 1)
}
func (p Pagination) NextURL() string {
	return p.url(p.Page + 1)
}

func (p Pagination) url(page int) string {
	sep := "?"
	if strings.Contains(p.BaseURL, "?") {
		sep = "&"
	}
	return p.BaseURL + sep + "page=" + strconv.Itoa(page)
}
