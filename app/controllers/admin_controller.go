package controllers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/directory"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/statistics"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

const (
	adminPageSize = 25
	statsDays     = 7
)

// AdminController handles the directory back office
type AdminController struct {
	svc *directory.Services
}

// NewAdminController creates a new admin controller
func NewAdminController(svc *directory.Services) *AdminController {
	return &AdminController{svc: svc}
}

// HandleDashboard renders the admin dashboard
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	pending, _, err := ac.svc.Repos.Submission.List(models.SUBMISSION_STATUS_PENDING, "", 0, 10)
	if err != nil {
		return ac.handleError(c, "Failed to load submissions", err)
	}
	return render(c, "admin/dashboard", fiber.Map{
		"Title":       "Admin",
		"Stats":       statistics.GetStatisticsData(ac.svc.Repos),
		"DailyStats":  ac.lastDaysStats(),
		"Submissions": pending,
		"Version":     directory.Version,
	})
}

// lastDaysStats counts new listings per day, with zero days filled in.
func (ac *AdminController) lastDaysStats() []models.DailyStats {
	now := time.Now()
	start := now.AddDate(0, 0, -(statsDays - 1)).Truncate(24 * time.Hour)
	end := now.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)

	stats, err := ac.svc.Repos.Business.GetDailyStats(start, end)
	if err != nil {
		log.Warnf("[Admin] daily stats: %v", err)
		stats = nil
	}
	counts := make(map[string]int, len(stats))
	for _, s := range stats {
		counts[s.Date] = s.Count
	}
	out := make([]models.DailyStats, statsDays)
	for i := range out {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = models.DailyStats{Date: date, Count: counts[date]}
	}
	return out
}

// HandleSettings renders the settings page
func (ac *AdminController) HandleSettings(c *fiber.Ctx) error {
	return render(c, "admin/settings", fiber.Map{
		"Title":        "Settings",
		"Current":      models.GetDirectorySettings(),
		"DefaultAdmin": ac.svc.Config.AdminEmail,
		"Config":       ac.svc.Config,
	})
}

// HandleSettingsUpdate stores the settings form
func (ac *AdminController) HandleSettingsUpdate(c *fiber.Ctx) error {
	s := &models.DirectorySettings{
		SiteTitle:          strings.TrimSpace(c.FormValue("site_title")),
		SiteDescription:    strings.TrimSpace(c.FormValue("site_description")),
		AdminEmail:         strings.TrimSpace(c.FormValue("admin_email")),
		SubmissionsEnabled: c.FormValue("submissions_enabled") == "on",
		ReviewsEnabled:     c.FormValue("reviews_enabled") == "on",
	}
	if err := models.SaveSettings(ac.svc.DB, s); err != nil {
		return flash.Error(c, "/admin/settings", "Failed to save settings: "+err.Error())
	}
	return flash.Success(c, "/admin/settings", "Settings saved")
}

// HandleUserManagement lists the accounts, optionally filtered by name, email or role
func (ac *AdminController) HandleUserManagement(c *fiber.Ctx) error {
	filter := repository.UserFilter{Query: strings.TrimSpace(c.Query("q")), Role: c.Query("role")}
	page := pageNumber(c)
	users, total, err := ac.svc.Repos.User.List(filter, (page-1)*adminPageSize, adminPageSize)
	if err != nil {
		return ac.handleError(c, "Failed to load users", err)
	}
	base := "/admin/users?q=" + url.QueryEscape(filter.Query) + "&role=" + url.QueryEscape(filter.Role)
	return render(c, "admin/users", fiber.Map{
		"Title":      "Users",
		"Users":      users,
		"Query":      filter.Query,
		"Role":       filter.Role,
		"Roles":      []string{models.ROLE_USER, models.ROLE_OWNER, models.ROLE_ADMIN},
		"Pagination": newPagination(page, adminPageSize, total, base),
	})
}

// HandleUserEdit renders the user edit page
func (ac *AdminController) HandleUserEdit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/users")
	}
	user, err := ac.svc.Repos.User.GetByID(id)
	if err != nil {
		return flash.Error(c, "/admin/users", "User not found")
	}
	return render(c, "admin/user_edit", fiber.Map{
		"Title":    "Edit user",
		"EditUser": user,
		"Roles":    []string{models.ROLE_USER, models.ROLE_OWNER, models.ROLE_ADMIN},
		"Statuses": []string{models.STATUS_ACTIVE, models.STATUS_DISABLED},
	})
}

// HandleUserUpdate saves name, email, role and status of an account
func (ac *AdminController) HandleUserUpdate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/users")
	}
	user, err := ac.svc.Repos.User.GetByID(id)
	if err != nil {
		return flash.Error(c, "/admin/users", "User not found")
	}
	back := "/admin/users/" + c.Params("id") + "/edit"

	user.Name = strings.TrimSpace(c.FormValue("name"))
	user.Email = strings.TrimSpace(c.FormValue("email"))
	user.Role = c.FormValue("role")
	user.Status = c.FormValue("status")
	if err := user.Validate(); err != nil {
		return flash.Error(c, back, "Validation failed: "+err.Error())
	}
	if err := ac.svc.Repos.User.Update(user); err != nil {
		return flash.Error(c, back, "Failed to update user: "+err.Error())
	}
	return flash.Success(c, "/admin/users", "User updated successfully")
}

// HandleUserDelete removes an account. Admins cannot delete themselves.
func (ac *AdminController) HandleUserDelete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Redirect("/admin/users")
	}
	if id == usercontext.GetUserID(c) {
		return flash.Error(c, "/admin/users", "You cannot delete your own account")
	}
	if err := ac.svc.Repos.User.Delete(id); err != nil {
		return flash.Error(c, "/admin/users", "Failed to delete user: "+err.Error())
	}
	return flash.Success(c, "/admin/users", "User deleted successfully")
}

// handleError handles errors consistently
func (ac *AdminController) handleError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("[Admin] %s: %v", message, err)

	redirectPath := "/admin"
	for _, section := range []string{"/submissions", "/reviews", "/businesses", "/terms", "/import", "/duplicates", "/permalinks", "/users"} {
		if strings.Contains(c.Path(), section) && !strings.HasSuffix(c.Path(), "/admin"+section) {
			redirectPath = "/admin" + section
			break
		}
	}
	return flash.Error(c, redirectPath, message)
}
