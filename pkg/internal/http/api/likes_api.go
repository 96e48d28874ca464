package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/http/exts"
	"github.com/warblr-net/warbler/pkg/internal/services"
)

func doLikeMessage(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	id, _ := c.ParamsInt("messageId", 0)
	message, err := services.GetMessage(database.C, uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	positive, err := services.LikeMessage(user, message)
	if err != nil {
		if errors.Is(err, services.ErrSelfLike) {
			if c.XHR() {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			exts.Flash(c, "danger", "You cannot like your own message.")
			return c.Redirect(backTo(c))
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if c.XHR() {
		return c.JSON(fiber.Map{
			"liked": positive,
			"count": services.CountMessageLikes(message.ID),
		})
	}

	exts.Flash(c, "success", lo.Ternary(positive, "Like added", "Like removed"))
	return c.Redirect(backTo(c))
}

func showLikedMessages(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}

	id, _ := c.ParamsInt("accountId", 0)
	account, err := services.GetAccount(uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	messages, err := services.ListLikedMessages(account)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return renderPage(c, "users/likes", fiber.Map{
		"User":     account,
		"Messages": messages,
	})
}
