package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/warblr-net/warbler/pkg/internal/http/exts"
	"github.com/warblr-net/warbler/pkg/internal/models"
	"github.com/warblr-net/warbler/pkg/internal/services"
)

func MapAPIs(app *fiber.App) {
	app.Get("/", homePage)

	app.Get("/signup", signUpPage)
	app.Post("/signup", doSignUp)
	app.Get("/login", loginPage)
	app.Post("/login", doLogin)
	app.Post("/logout", doLogout)

	accounts := app.Group("/users")
	{
		accounts.Get("/", listAccount)
		accounts.Get("/profile", editProfilePage)
		accounts.Post("/profile", doEditProfile)
		accounts.Post("/delete", doDeleteAccount)
		accounts.Post("/follow/:accountId", doFollow)
		accounts.Post("/stop-following/:accountId", doUnfollow)
		accounts.Get("/:accountId", showAccount)
		accounts.Get("/:accountId/following", showFollowing)
		accounts.Get("/:accountId/followers", showFollowers)
		accounts.Get("/:accountId/likes", showLikedMessages)
	}

	messages := app.Group("/messages")
	{
		messages.Get("/new", newMessagePage)
		messages.Post("/new", doNewMessage)
		messages.Get("/:messageId", showMessage)
		messages.Post("/:messageId/delete", doDeleteMessage)
		// Two paths, one contract: the like toggle is always authenticated
		// and CSRF-checked, whether called from a form or via AJAX.
		messages.Post("/:messageId/like", doLikeMessage)
		messages.Post("/:messageId/likes", doLikeMessage)
	}
}

// renderPage wraps c.Render with the context every template expects: the
// signed-in account, queued flash notices, and the CSRF token.
func renderPage(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	bind["Flashes"] = exts.ConsumeFlashes(c)
	bind["CSRFToken"] = ""
	if user, ok := c.Locals("user").(models.Account); ok {
		bind["CurrentUser"] = user
	}
	if token, ok := c.Locals("csrf").(string); ok {
		bind["CSRFToken"] = token
	}
	return c.Render(name, bind)
}

// requireAuthenticated flashes the generic unauthorized notice and redirects
// home when nobody is signed in. The notice never distinguishes "not logged
// in" from "forbidden".
func requireAuthenticated(c *fiber.Ctx) (models.Account, bool) {
	user, ok := c.Locals("user").(models.Account)
	if !ok {
		exts.Flash(c, "danger", "Access unauthorized.")
		_ = c.Redirect("/")
	}
	return user, ok
}

func backTo(c *fiber.Ctx) string {
	if referer := c.Get(fiber.HeaderReferer); len(referer) > 0 {
		return referer
	}
	return "/"
}

func homePage(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return renderPage(c, "home-anon", nil)
	}

	messages, err := services.ListFeed(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return renderPage(c, "home", fiber.Map{
		"Messages": messages,
	})
}
