package apiv1

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/permalink"
)

// Pong is the body of GET /ping
type Pong struct {
	Ping string `json:"ping"`
}

// Error is the body of every failed request
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Term is an area or category reference
type Term struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Rating is the aggregate of the approved reviews
type Rating struct {
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

// Business is the public view of a listing
type Business struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Slug       string            `json:"slug"`
	URL        string            `json:"url"`
	Excerpt    string            `json:"excerpt,omitempty"`
	Content    string            `json:"content,omitempty"`
	Address    string            `json:"address,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Email      string            `json:"email,omitempty"`
	Website    string            `json:"website,omitempty"`
	ImageURL   string            `json:"image_url,omitempty"`
	Area       *Term             `json:"area,omitempty"`
	Categories []Term            `json:"categories"`
	Hours      map[string]string `json:"opening_hours,omitempty"`
	Premium    bool              `json:"premium"`
	Verified   bool              `json:"verified"`
	Claimed    bool              `json:"claimed"`
	Rating     Rating            `json:"rating"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Review is an approved review
type Review struct {
	ID           uint      `json:"id"`
	ReviewerName string    `json:"reviewer_name"`
	ReviewText   string    `json:"review_text"`
	Rating       int       `json:"rating"`
	ReviewDate   time.Time `json:"review_date"`
	Source       string    `json:"source"`
}

// APIServer serves the read-only directory API
type APIServer struct {
	svc *directory.Services
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *directory.Services) *APIServer {
	return &APIServer{svc: svc}
}

// RegisterHandlers mounts the v1 routes on router.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/businesses/:id", s.GetBusiness)
	router.Get("/businesses/:id/reviews", s.GetBusinessReviews)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func apiError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Error{Error: code, Message: message})
}

// publishedBusiness loads the listing of the :id param; drafts and trashed
// listings are not found.
func (s *APIServer) publishedBusiness(c *fiber.Ctx) (*models.Business, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, apiError(c, fiber.StatusBadRequest, "bad_request", "id must be a positive integer")
	}
	b, err := s.svc.Repos.Business.GetByID(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && b.Status != models.BUSINESS_STATUS_PUBLISH) {
		return nil, apiError(c, fiber.StatusNotFound, "not_found", "business not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBusiness returns one published listing with its rating.
func (s *APIServer) GetBusiness(c *fiber.Ctx) error {
	b, err := s.publishedBusiness(c)
	if b == nil {
		return err
	}
	summary, err := s.svc.Reviews.Summary(b.ID)
	if err != nil {
		return err
	}

	base := strings.TrimRight(s.svc.Config.PublicDomain, "/")
	out := Business{
		ID:         b.ID,
		Title:      b.Title,
		Slug:       b.Slug,
		URL:        base + permalink.BusinessURL(b),
		Excerpt:    b.Excerpt,
		Content:    b.Content,
		Address:    b.FullAddress(),
		Phone:      b.Phone,
		Email:      b.Email,
		Website:    b.Website,
		ImageURL:   b.ImageURL,
		Categories: make([]Term, 0, len(b.Categories)),
		Premium:    b.Premium,
		Verified:   b.Verified,
		Claimed:    b.Claimed,
		Rating:     Rating{Count: summary.Count},
		UpdatedAt:  b.UpdatedAt,
	}
	if summary.HasAverage {
		avg := summary.Average
		out.Rating.Average = &avg
	}
	if b.Area != nil {
		out.Area = &Term{ID: b.Area.ID, Name: b.Area.Name, Slug: b.Area.Slug, URL: base + permalink.AreaURL(b.Area)}
	}
	for i := range b.Categories {
		t := &b.Categories[i]
		out.Categories = append(out.Categories, Term{ID: t.ID, Name: t.Name, Slug: t.Slug, URL: base + permalink.CategoryURL(t, b.Area)})
	}
	if hours := b.OpeningHours(); len(hours) > 0 {
		out.Hours = make(map[string]string, len(hours))
		for _, h := range hours {
			out.Hours[strings.ToLower(h[0])] = h[1]
		}
	}
	return c.JSON(out)
}

// GetBusinessReviews returns the approved reviews of a published listing, newest first.
func (s *APIServer) GetBusinessReviews(c *fiber.Ctx) error {
	b, err := s.publishedBusiness(c)
	if b == nil {
		return err
	}
	list, err := s.svc.Reviews.Approved(b.ID)
	if err != nil {
		return err
	}
	out := make([]Review, len(list))
	for i, r := range list {
		out[i] = Review{
			ID:           r.ID,
			ReviewerName: r.ReviewerName,
			ReviewText:   r.ReviewText,
			Rating:       r.Rating,
			ReviewDate:   r.ReviewDate,
			Source:       r.Source,
		}
	}
	return c.JSON(fiber.Map{"business_id": b.ID, "reviews": out})
}
