package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/http/exts"
	"github.com/warblr-net/warbler/pkg/internal/services"
)

func newMessagePage(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}
	return renderPage(c, "messages/create", nil)
}

func doNewMessage(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	var data struct {
		Text string `form:"text" validate:"required,max=140"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		if c.XHR() {
			return err
		}
		exts.Flash(c, "danger", err.Error())
		return renderPage(c, "messages/create", nil)
	}

	message, err := services.NewMessage(user, data.Text)
	if err != nil {
		if c.XHR() {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		exts.Flash(c, "danger", err.Error())
		return renderPage(c, "messages/create", nil)
	}

	if c.XHR() {
		return c.JSON(fiber.Map{
			"user":    user,
			"message": message,
		})
	}

	return c.Redirect(fmt.Sprintf("/users/%d", user.ID))
}

func showMessage(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	id, _ := c.ParamsInt("messageId", 0)
	message, err := services.GetMessage(database.C, uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return renderPage(c, "messages/show", fiber.Map{
		"Message":   message,
		"LikeCount": services.CountMessageLikes(message.ID),
		"HasLiked":  services.HasLiked(user, message),
	})
}

func doDeleteMessage(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	id, _ := c.ParamsInt("messageId", 0)
	message, err := services.GetMessage(database.C, uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	// Ownership mismatch reads the same as not being signed in at all, so
	// probing other people's messages reveals nothing.
	if message.AccountID != user.ID {
		exts.Flash(c, "danger", "Access unauthorized.")
		return c.Redirect("/")
	}

	if err := services.DeleteMessage(message); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	exts.Flash(c, "success", "Message deleted")
	return c.Redirect(fmt.Sprintf("/users/%d", user.ID))
}
