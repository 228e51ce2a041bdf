package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/bizdir/internal/pkg/duplicates"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
)

// confirmation value the delete form must post
const duplicateConfirmValue = "DELETE"

// HandleDuplicates scans for duplicate listings with the selected mode.
func (ac *AdminController) HandleDuplicates(c *fiber.Ctx) error {
	mode, err := duplicates.ParseMode(c.Query("mode"))
	if err != nil {
		return flash.Error(c, "/admin/duplicates", "Unknown duplicate mode")
	}
	groups, err := ac.svc.Duplicates.Scan(c.UserContext(), mode)
	if err != nil {
		return ac.handleError(c, "Duplicate scan failed", err)
	}
	copies := 0
	for _, g := range groups {
		copies += len(g.Rows) - 1
	}
	return render(c, "admin/duplicates", fiber.Map{
		"Title":        "Duplicates",
		"Mode":         mode,
		"Modes":        duplicates.Modes(),
		"Groups":       groups,
		"Copies":       copies,
		"ConfirmValue": duplicateConfirmValue,
	})
}

// HandleDuplicatesDelete permanently removes the selected listings. The form
// has to carry the typed confirmation.
func (ac *AdminController) HandleDuplicatesDelete(c *fiber.Ctx) error {
	back := "/admin/duplicates?mode=" + c.FormValue("mode")
	confirmed := c.FormValue("confirm") == duplicateConfirmValue
	n, err := ac.svc.Duplicates.Delete(c.UserContext(), formIDs(c, "business_ids"), confirmed)
	switch {
	case errors.Is(err, duplicates.ErrNotConfirmed):
		return flash.Error(c, back, fmt.Sprintf("Please type %s to confirm the permanent deletion", duplicateConfirmValue))
	case errors.Is(err, duplicates.ErrNothing):
		return flash.Error(c, back, "No listings selected")
	case err != nil:
		return ac.handleError(c, "Failed to delete duplicates", err)
	}
	return flash.Success(c, back, fmt.Sprintf("%d listing(s) permanently deleted", n))
}
