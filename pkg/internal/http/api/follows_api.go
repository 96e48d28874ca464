package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/warblr-net/warbler/pkg/internal/services"
)

func doFollow(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	id, _ := c.ParamsInt("accountId", 0)
	target, err := services.GetAccount(uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.FollowAccount(user, target); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Redirect(fmt.Sprintf("/users/%d/following", user.ID))
}

func doUnfollow(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	id, _ := c.ParamsInt("accountId", 0)
	target, err := services.GetAccount(uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.UnfollowAccount(user, target); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Redirect(fmt.Sprintf("/users/%d/following", user.ID))
}

func showFollowing(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}

	id, _ := c.ParamsInt("accountId", 0)
	account, err := services.GetAccount(uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	following, err := services.ListFollowing(account)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return renderPage(c, "users/following", fiber.Map{
		"User":     account,
		"Accounts": following,
	})
}

func showFollowers(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}

	id, _ := c.ParamsInt("accountId", 0)
	account, err := services.GetAccount(uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	followers, err := services.ListFollowers(account)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return renderPage(c, "users/followers", fiber.Map{
		"User":     account,
		"Accounts": followers,
	})
}
