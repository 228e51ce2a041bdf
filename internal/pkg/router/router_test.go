package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/config"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/listing"
	"github.com/ManuelReschke/bizdir/internal/pkg/session"
	"github.com/ManuelReschke/bizdir/internal/pkg/submission"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
	"github.com/ManuelReschke/bizdir/internal/pkg/viewmodel"
)

type fixture struct {
	app      *fiber.App
	svc      *directory.Services
	business *models.Business
}

// newFixture serves the full router over an in-memory database with one
// published listing in springfield / bakeries.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.NewCache(t)
	session.SetSessionStore(fibersession.New())
	t.Cleanup(func() { session.SetSessionStore(nil) })

	cfg := config.Defaults()
	cfg.NonceSecret = "test-secret"
	svc := directory.New(db, cfg, nil, nil)

	area, err := svc.Terms.Create(models.TAXONOMY_AREA, "Springfield", "", "", nil)
	require.NoError(t, err)
	cat, err := svc.Terms.Create(models.TAXONOMY_CATEGORY, "Bakeries", "", "", nil)
	require.NoError(t, err)
	b := &models.Business{Title: "Main Street Bakery", Phone: "555-0100", HoursMonday: "7:00 - 18:00"}
	require.NoError(t, listing.Create(svc.Repos, b, area.ID, []uint{cat.ID}))

	app := fiber.New(fiber.Config{Views: viewmodel.NewEngine("../../../views")})
	InstallRouter(app, svc)
	return &fixture{app: app, svc: svc, business: b}
}

func (f *fixture) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	return f.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

// csrfToken loads the home page and returns the issued token.
func (f *fixture) csrfToken(t *testing.T) string {
	t.Helper()
	resp := f.get(t, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" {
			return c.Value
		}
	}
	t.Fatal("no csrf cookie issued")
	return ""
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestDirectoryPages(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"home", "/", fiber.StatusOK, "Main Street Bakery"},
		{"area archive", "/directory/springfield/", fiber.StatusOK, "Businesses in Springfield"},
		{"area category archive", "/directory/springfield/bakeries/", fiber.StatusOK, "Bakeries in Springfield"},
		{"category archive", "/directory/categories/bakeries/", fiber.StatusOK, "Main Street Bakery"},
		{"listing", "/directory/springfield/bakeries/main-street-bakery/", fiber.StatusOK, "555-0100"},
		{"unknown area", "/directory/shelbyville/", fiber.StatusNotFound, "Page not found"},
		{"unknown category", "/directory/springfield/florists/", fiber.StatusNotFound, "Page not found"},
		{"unknown listing", "/directory/springfield/bakeries/nope/", fiber.StatusNotFound, "Page not found"},
		{"unmatched route", "/does/not/exist", fiber.StatusNotFound, "Page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.get(t, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body(t, resp), tt.want)
		})
	}
}

func TestListingPageCarriesSchema(t *testing.T) {
	f := newFixture(t)

	html := body(t, f.get(t, "/directory/springfield/bakeries/main-street-bakery/"))
	assert.Contains(t, html, `<script type="application/ld+json">`)
	assert.Contains(t, html, `"@type":"LocalBusiness"`)
	assert.Contains(t, html, `rel="canonical"`)
}

func TestFlatLinkRedirectsToCanonical(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/business/main-street-bakery/")
	assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/directory/springfield/bakeries/main-street-bakery/", resp.Header.Get(fiber.HeaderLocation))
}

func TestWrongAreaRedirectsToCanonical(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Terms.Create(models.TAXONOMY_AREA, "Shelbyville", "", "", nil)
	require.NoError(t, err)

	resp := f.get(t, "/directory/shelbyville/bakeries/main-street-bakery/")
	assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/directory/springfield/bakeries/main-street-bakery/", resp.Header.Get(fiber.HeaderLocation))
}

func TestAjaxReviewIsStoredUnapproved(t *testing.T) {
	f := newFixture(t)
	token := f.csrfToken(t)

	form := url.Values{
		"business_id":    {"1"},
		"reviewer_name":  {"Marge"},
		"reviewer_email": {"marge@example.com"},
		"review_text":    {"Lovely bread and friendly staff."},
		"rating":         {"5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/ajax/reviews", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set("X-Csrf-Token", token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: token})

	resp := f.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, true, out["success"])

	rows, total, err := f.svc.Repos.Review.List(repository.ReviewListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.False(t, rows[0].Approved)
	assert.Equal(t, f.business.ID, rows[0].BusinessID)
}

func TestAjaxReviewWithoutTokenIsRejected(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/ajax/reviews", strings.NewReader("business_id=1"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp := f.do(t, req)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

func (f *fixture) postAjax(t *testing.T, path, token string, form url.Values) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set("X-Csrf-Token", token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: token})

	resp := f.do(t, req)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAjaxClaim(t *testing.T) {
	f := newFixture(t)
	token := f.csrfToken(t)
	form := url.Values{
		"business_id":     {"1"},
		"submitter_name":  {"Marge"},
		"submitter_email": {"marge@example.com"},
		"message":         {"I run the bakery."},
	}

	require.NoError(t, f.svc.Repos.Business.UpdateColumns(f.business.ID, map[string]interface{}{"claimed": true}))
	status, out := f.postAjax(t, "/ajax/claims", token, form)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Business is already claimed", out["message"])

	// a refused claim does not count against the throttle
	require.NoError(t, f.svc.Repos.Business.UpdateColumns(f.business.ID, map[string]interface{}{"claimed": false}))
	status, out = f.postAjax(t, "/ajax/claims", token, form)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["success"])
	id, ok := out["submission_id"].(float64)
	require.True(t, ok)

	sub, err := f.svc.Repos.Submission.GetByID(uint(id))
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_TYPE_CLAIM, sub.Type)
	assert.Equal(t, models.SUBMISSION_STATUS_PENDING, sub.Status)
	assert.Equal(t, "marge@example.com", sub.SubmitterEmail)

	status, out = f.postAjax(t, "/ajax/claims", token, form)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, false, out["success"])

	form.Set("business_id", "999")
	req := httptest.NewRequest(http.MethodPost, "/ajax/claims", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, fiber.StatusForbidden, f.do(t, req).StatusCode, "csrf token required")
}

func TestAjaxClaimPendingIsRefused(t *testing.T) {
	f := newFixture(t)
	token := f.csrfToken(t)

	_, err := f.svc.Submissions.Claim(context.Background(), submission.ClaimInput{
		Submitter:  submission.Submitter{Name: "Ned", Email: "ned@example.com"},
		BusinessID: f.business.ID,
	})
	require.NoError(t, err)

	status, out := f.postAjax(t, "/ajax/claims", token, url.Values{
		"business_id":     {"1"},
		"submitter_name":  {"Marge"},
		"submitter_email": {"marge@example.com"},
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "A claim for this business is already pending", out["message"])

	status, _ = f.postAjax(t, "/ajax/claims", token, url.Values{
		"business_id":     {"999"},
		"submitter_name":  {"Marge"},
		"submitter_email": {"marge@example.com"},
	})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminAjaxRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/ajax/submissions/approve", strings.NewReader("submission_id=1"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp := f.do(t, req)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, false, out["success"])
}

func TestAdminPagesRequireAdmin(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/admin/reviews")
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, body(t, resp), "Bulk actions")
}

func TestOwnerAreaRedirectsToLogin(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/owner")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderLocation), "/login"))
}

func TestAPIBusiness(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Reviews.Add(context.Background(), &models.Review{
		BusinessID:   f.business.ID,
		ReviewerName: "Homer",
		ReviewText:   "Best donuts in town, no doubt.",
		Rating:       4,
		Approved:     true,
	})
	require.NoError(t, err)

	resp := f.get(t, "/api/v1/businesses/1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Title  string            `json:"title"`
		URL    string            `json:"url"`
		Hours  map[string]string `json:"opening_hours"`
		Rating struct {
			Average *float64 `json:"average"`
			Count   int64    `json:"count"`
		} `json:"rating"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Main Street Bakery", out.Title)
	assert.True(t, strings.HasSuffix(out.URL, "/directory/springfield/bakeries/main-street-bakery/"))
	assert.Equal(t, "7:00 - 18:00", out.Hours["monday"])
	require.NotNil(t, out.Rating.Average)
	assert.InDelta(t, 4.0, *out.Rating.Average, 0.001)
	assert.EqualValues(t, 1, out.Rating.Count)

	resp = f.get(t, "/api/v1/businesses/1/reviews")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Best donuts in town")
}

func TestAPIErrors(t *testing.T) {
	f := newFixture(t)
	draft := &models.Business{Title: "Secret Shop", Status: models.BUSINESS_STATUS_DRAFT}
	require.NoError(t, listing.Create(f.svc.Repos, draft, 0, nil))

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/businesses/abc", fiber.StatusBadRequest, "bad_request"},
		{"/api/v1/businesses/999", fiber.StatusNotFound, "not_found"},
		{"/api/v1/businesses/2", fiber.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		resp := f.get(t, tt.path)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, tt.code, out["error"], tt.path)
	}
}

func TestAPIPing(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/api/v1/ping")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ping":"pong"}`, body(t, resp))
}
