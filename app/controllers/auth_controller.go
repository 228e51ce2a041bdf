package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/bizdir/internal/pkg/oauth"
	"github.com/ManuelReschke/bizdir/internal/pkg/session"
	"github.com/ManuelReschke/bizdir/internal/pkg/usercontext"
)

const loginFailed = "There is a problem with the login process"

// AuthController handles owner accounts
type AuthController struct {
	repos *repository.Repositories
}

func NewAuthController(repos *repository.Repositories) *AuthController {
	return &AuthController{repos: repos}
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return render(c, "auth/login", fiber.Map{
		"Title":       "Log in",
		"Next":        c.Query("next"),
		"GoogleLogin": oauth.Enabled(),
	})
}

func (ac *AuthController) HandleLoginPost(c *fiber.Ctx) error {
	next := safeNext(c.FormValue("next"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))

	// notice: the same message for unknown users and wrong passwords
	user, err := ac.repos.User.GetByEmail(email)
	if err != nil || !user.CheckPassword(c.FormValue("password")) {
		return flash.Error(c, "/login", loginFailed)
	}
	if !user.IsActive() {
		return flash.Error(c, "/login", "Your account is disabled")
	}

	if err := startSession(c, user); err != nil {
		log.Errorf("[Auth] session for user %d: %v", user.ID, err)
		return flash.Error(c, "/login", loginFailed)
	}
	ac.touchLastLogin(user)

	return flash.Success(c, next, "Welcome back, "+user.Name)
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return render(c, "auth/register", fiber.Map{
		"Title":       "Create an account",
		"GoogleLogin": oauth.Enabled(),
	})
}

func (ac *AuthController) HandleRegisterPost(c *fiber.Ctx) error {
	if hcaptcha.Enabled() {
		if ok, err := hcaptcha.Verify(c.FormValue("h-captcha-response")); !ok {
			log.Infof("[Auth] captcha rejected registration: %v", err)
			return flash.Error(c, "/register", "Please solve the captcha")
		}
	}

	password := c.FormValue("password")
	if password != c.FormValue("password_confirm") {
		return flash.Error(c, "/register", "The passwords do not match")
	}

	user, err := models.CreateUser(
		strings.TrimSpace(c.FormValue("name")),
		strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
		password,
	)
	if err != nil {
		return flash.Error(c, "/register", "Please enter a name, a valid email address and a password of at least 6 characters")
	}
	if err := ac.repos.User.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return flash.Error(c, "/register", "An account with this email address already exists")
		}
		log.Errorf("[Auth] register %s: %v", user.Email, err)
		return flash.Error(c, "/register", "Your account could not be created")
	}

	if err := startSession(c, user); err != nil {
		return flash.Error(c, "/login", loginFailed)
	}
	log.Infof("[Auth] registered user %d", user.ID)
	return flash.Success(c, "/owner", "Your account was created")
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	sess, err := store.Get(c)
	if err != nil {
		return flash.Error(c, "/login", "logged out (no session)")
	}
	if err := sess.Destroy(); err != nil {
		return flash.Error(c, "/", "Logout failed")
	}
	c.Locals(usercontext.LocalsKey, usercontext.UserContext{})
	return flash.Success(c, "/", "You are logged out")
}

func (ac *AuthController) touchLastLogin(user *models.User) {
	now := time.Now()
	user.LastLoginAt = &now
	if err := ac.repos.User.Update(user); err != nil {
		log.Warnf("[Auth] last login of user %d: %v", user.ID, err)
	}
}

func startSession(c *fiber.Ctx, user *models.User) error {
	store := session.GetSessionStore()
	if store == nil {
		return errors.New("session store not initialized")
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	// a fresh id on login
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	return sess.Save()
}
