package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/session"
)

const oauthNextKey = "oauth_next"

// HandleOAuthBegin remembers where to return after login and hands over to the provider.
func (ac *AuthController) HandleOAuthBegin(c *fiber.Ctx) error {
	if next := c.Query("next"); next != "" {
		if err := session.SetSessionValue(c, oauthNextKey, safeNext(next)); err != nil {
			log.Warnf("[OAuth] storing return path: %v", err)
		}
	}
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the Google flow and logs the owner in
func (ac *AuthController) HandleOAuthCallback(c *fiber.Ctx) error {
	gu, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[OAuth] completing auth failed: %v", err)
		return flash.Error(c, "/login", "Login with Google failed")
	}

	user, err := ac.linkProviderUser(gu)
	if err != nil {
		log.Errorf("[OAuth] linking %s user %s: %v", gu.Provider, gu.UserID, err)
		return flash.Error(c, "/login", "Login with Google failed")
	}
	if !user.IsActive() {
		return flash.Error(c, "/login", "Your account is disabled")
	}

	next := session.GetSessionValue(c, oauthNextKey)
	if next == "" {
		next = "/owner"
	}
	if err := startSession(c, user); err != nil {
		return flash.Error(c, "/login", loginFailed)
	}
	ac.touchLastLogin(user)
	return c.Redirect(next, fiber.StatusSeeOther)
}

// linkProviderUser finds the account linked to the provider identity. Unknown
// identities are attached to the user with the same email or to a new user.
func (ac *AuthController) linkProviderUser(gu goth.User) (*models.User, error) {
	var expires *time.Time
	if !gu.ExpiresAt.IsZero() {
		t := gu.ExpiresAt
		expires = &t
	}

	now := time.Now()
	pa, err := ac.repos.ProviderAccount.GetByProvider(gu.Provider, gu.UserID)
	if err == nil {
		pa.Refresh(gu.Email, gu.AccessToken, gu.RefreshToken, expires, now)
		if err := ac.repos.ProviderAccount.Save(pa); err != nil {
			return nil, fmt.Errorf("update tokens: %w", err)
		}
		return ac.repos.User.GetByID(pa.UserID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user *models.User
	if gu.Email != "" {
		if existing, err := ac.repos.User.GetByEmail(gu.Email); err == nil {
			user = existing
		}
	}
	if user == nil {
		email := gu.Email
		if email == "" {
			email = fmt.Sprintf("%s_%s@%s.oauth.local", gu.Provider, gu.UserID, gu.Provider)
		}
		// the password is never used; validation needs one
		user, err = models.CreateUser(firstNonEmpty(gu.Name, gu.NickName, "Business owner"), email, uuid.NewString())
		if err != nil {
			return nil, err
		}
		if err := ac.repos.User.Create(user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}

	pa = &models.ProviderAccount{UserID: user.ID, Provider: gu.Provider, ProviderUserID: gu.UserID}
	pa.Refresh(gu.Email, gu.AccessToken, gu.RefreshToken, expires, now)
	if err := ac.repos.ProviderAccount.Save(pa); err != nil {
		return nil, fmt.Errorf("link provider: %w", err)
	}
	return user, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
