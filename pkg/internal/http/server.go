package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/warblr-net/warbler/pkg/internal/http/api"
	"github.com/warblr-net/warbler/pkg/internal/http/exts"
)

type App struct {
	*fiber.App
}

func NewServer() *App {
	engine := html.New(viper.GetString("views_dir"), ".html")

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "Warbler",
		AppName:               "Warbler",
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		Views:                 engine,
		ViewsLayout:           "layouts/main",
		ErrorHandler:          renderError,
	})

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("took", time.Since(start)).
			Msg("Request handled.")
		return err
	})

	// The original serves every page uncacheable.
	app.Use(func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Next()
	})

	if secret := viper.GetString("security.cookie_secret"); len(secret) > 0 {
		app.Use(encryptcookie.New(encryptcookie.Config{
			Key: secret,
		}))
	}

	exts.Sessions = session.New(session.Config{
		Expiration:     7 * 24 * time.Hour,
		KeyLookup:      "cookie:warbler_session",
		CookieHTTPOnly: true,
		CookieSecure:   viper.GetBool("security.cookie_secure"),
		CookieSameSite: "Lax",
	})
	exts.Sessions.RegisterType([]exts.FlashMessage{})

	// CSRF stays on unless the deployment explicitly opts out.
	viper.SetDefault("security.csrf_enabled", true)
	if viper.GetBool("security.csrf_enabled") {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:csrf_token",
			CookieName:     "warbler_csrf",
			CookieHTTPOnly: true,
			CookieSecure:   viper.GetBool("security.cookie_secure"),
			CookieSameSite: "Lax",
			Expiration:     1 * time.Hour,
			Session:        exts.Sessions,
			ContextKey:     "csrf",
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				exts.Flash(c, "danger", "Access unauthorized.")
				return c.Redirect("/")
			},
		}))
	}

	app.Use(authMiddleware)

	app.Static("/static", viper.GetString("static_dir"))

	api.MapAPIs(app)

	return &App{app}
}

func renderError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
		message = ferr.Message
	}

	if code == fiber.StatusNotFound && !c.XHR() {
		return c.Status(code).Render("404", fiber.Map{})
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

func (v *App) Listen() {
	if err := v.App.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}
