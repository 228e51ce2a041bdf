package controllers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/reviews"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

var reviewActions = []string{"approve", "unapprove", "delete"}

// reviewColumn is a sortable header of the review table.
type reviewColumn struct {
	Key    string
	Label  string
	URL    string
	Active bool
	Order  string
}

// reviewTableRow carries the signed one-click links of a review.
type reviewTableRow struct {
	repository.ReviewRow
	Actions map[string]string
}

func reviewNonceAction(action string) string {
	return "review_" + action
}

func validReviewAction(action string) bool {
	for _, a := range reviewActions {
		if a == action {
			return true
		}
	}
	return false
}

// HandleReviews renders the sortable review table.
func (ac *AdminController) HandleReviews(c *fiber.Ctx) error {
	opts := repository.ReviewListOptions{
		Status:     c.Query("status"),
		BusinessID: parseID(c.Query("business_id")),
		OrderBy:    c.Query("orderby", "date"),
		Order:      strings.ToLower(c.Query("order", "desc")),
		Limit:      ac.svc.Config.ReviewsPerPage,
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.BusinessID != 0 {
		query.Set("business_id", strconv.FormatUint(uint64(opts.BusinessID), 10))
	}
	query.Set("orderby", opts.OrderBy)
	query.Set("order", opts.Order)
	base := "/admin/reviews?" + query.Encode()

	page := pageNumber(c)
	opts.Offset = newPagination(page, opts.Limit, 0, base).Offset()
	rows, total, err := ac.svc.Repos.Review.List(opts)
	if err != nil {
		return ac.handleError(c, "Failed to load reviews", err)
	}

	uid := usercontext.GetUserID(c)
	table := make([]reviewTableRow, len(rows))
	for i, r := range rows {
		links := make(map[string]string, len(reviewActions))
		for _, a := range reviewActions {
			links[a] = fmt.Sprintf("/admin/reviews/%d/%s?_nonce=%s", r.ID, a, ac.svc.Nonce.Create(reviewNonceAction(a), uid))
		}
		table[i] = reviewTableRow{ReviewRow: r, Actions: links}
	}

	approvedCount, _ := ac.svc.Repos.Review.CountByApproved(true)
	pendingCount, _ := ac.svc.Repos.Review.CountByApproved(false)
	return render(c, "admin/reviews", fiber.Map{
		"Title":         "Reviews",
		"Rows":          table,
		"Columns":       reviewColumns(query, opts),
		"Status":        opts.Status,
		"ApprovedCount": approvedCount,
		"PendingCount":  pendingCount,
		"Pagination":    newPagination(page, opts.Limit, total, base),
		"Actions":       reviewActions,
	})
}

func reviewColumns(query url.Values, opts repository.ReviewListOptions) []reviewColumn {
	cols := []reviewColumn{
		{Key: "business", Label: "Business"},
		{Key: "reviewer", Label: "Reviewer"},
		{Key: "rating", Label: "Rating"},
		{Key: "date", Label: "Date"},
		{Key: "source", Label: "Source"},
		{Key: "status", Label: "Status"},
	}
	for i := range cols {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		order := "asc"
		if cols[i].Key == opts.OrderBy {
			cols[i].Active = true
			cols[i].Order = opts.Order
			if opts.Order == "asc" {
				order = "desc"
			}
		}
		q.Set("orderby", cols[i].Key)
		q.Set("order", order)
		cols[i].URL = "/admin/reviews?" + q.Encode()
	}
	return cols
}

// HandleReviewAction runs a one-click row action signed with a nonce.
func (ac *AdminController) HandleReviewAction(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	action := c.Params("action")
	if !ok || !validReviewAction(action) {
		return flash.Error(c, "/admin/reviews", "Invalid review action")
	}
	if !ac.svc.Nonce.Verify(c.Query("_nonce"), reviewNonceAction(action), usercontext.GetUserID(c)) {
		return flash.Error(c, "/admin/reviews", "The link has expired. Please try again.")
	}
	n, err := ac.svc.Reviews.Moderate(action, []uint{id})
	if err != nil {
		return ac.handleError(c, "Failed to update review", err)
	}
	return flash.Success(c, "/admin/reviews", moderationMessage(action, n))
}

// HandleReviewBulk applies the bulk action of the table form.
func (ac *AdminController) HandleReviewBulk(c *fiber.Ctx) error {
	action := c.FormValue("bulk_action")
	if !validReviewAction(action) {
		return flash.Error(c, "/admin/reviews", "Please choose a bulk action")
	}
	ids := formIDs(c, "review_ids")
	if len(ids) == 0 {
		return flash.Error(c, "/admin/reviews", "No reviews selected")
	}
	n, err := ac.svc.Reviews.Moderate(action, ids)
	if err != nil {
		return ac.handleError(c, "Failed to update reviews", err)
	}
	return flash.Success(c, "/admin/reviews", moderationMessage(action, n))
}

func moderationMessage(action string, n int64) string {
	verb := map[string]string{"approve": "approved", "unapprove": "unapproved", "delete": "deleted"}[action]
	return fmt.Sprintf("%s %s", reviews.CountLabel(n), verb)
}

// HandleReviewNew renders the manual review form.
func (ac *AdminController) HandleReviewNew(c *fiber.Ctx) error {
	return render(c, "admin/review_new", fiber.Map{
		"Title":      "Add review",
		"BusinessID": c.Query("business_id"),
		"Today":      time.Now().Format("2006-01-02"),
	})
}

// HandleReviewCreate stores a review entered by an admin. It is approved
// unless the box is unticked.
func (ac *AdminController) HandleReviewCreate(c *fiber.Ctx) error {
	rating, _ := strconv.Atoi(c.FormValue("rating"))
	date, err := time.Parse("2006-01-02", c.FormValue("review_date"))
	if err != nil {
		date = time.Now()
	}
	source := strings.TrimSpace(c.FormValue("source"))
	if source == "" {
		source = models.REVIEW_SOURCE_ADMIN
	}
	r := &models.Review{
		BusinessID:    parseID(c.FormValue("business_id")),
		ReviewerName:  strings.TrimSpace(c.FormValue("reviewer_name")),
		ReviewerEmail: strings.TrimSpace(c.FormValue("reviewer_email")),
		ReviewText:    strings.TrimSpace(c.FormValue("review_text")),
		Rating:        rating,
		ReviewDate:    date,
		Source:        source,
		Approved:      c.FormValue("approved") == "on",
	}
	if err := ac.svc.Reviews.Add(c.UserContext(), r); err != nil {
		if errors.Is(err, reviews.ErrInvalid) || errors.Is(err, reviews.ErrBusinessNotFound) {
			return flash.Error(c, "/admin/reviews/new?business_id="+c.FormValue("business_id"), reviewMessage(err))
		}
		return ac.handleError(c, "Failed to add review", err)
	}
	return flash.Success(c, "/admin/reviews", "Review added")
}
