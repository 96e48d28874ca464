package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/http/exts"
	"github.com/warblr-net/warbler/pkg/internal/services"
)

func signUpPage(c *fiber.Ctx) error {
	// Starting a signup always abandons the current session.
	_ = exts.ClearAuth(c)
	return renderPage(c, "users/signup", nil)
}

func doSignUp(c *fiber.Ctx) error {
	_ = exts.ClearAuth(c)

	var data struct {
		Name     string `form:"username" validate:"required,max=30"`
		Email    string `form:"email" validate:"required,email"`
		Password string `form:"password" validate:"required,min=6"`
		Avatar   string `form:"image_url" validate:"omitempty,url"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		exts.Flash(c, "danger", err.Error())
		return renderPage(c, "users/signup", nil)
	}

	account, err := services.SignUpAccount(data.Name, data.Email, data.Password, data.Avatar)
	if err != nil {
		if errors.Is(err, services.ErrAccountTaken) {
			exts.Flash(c, "danger", "Username or email already taken")
			return renderPage(c, "users/signup", nil)
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := exts.SetAuth(c, account.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Redirect("/")
}

func loginPage(c *fiber.Ctx) error {
	return renderPage(c, "users/login", nil)
}

func doLogin(c *fiber.Ctx) error {
	var data struct {
		Name     string `form:"username" validate:"required"`
		Password string `form:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		exts.Flash(c, "danger", "Invalid credentials.")
		return renderPage(c, "users/login", nil)
	}

	account, err := services.AuthenticateAccount(data.Name, data.Password)
	if err != nil {
		exts.Flash(c, "danger", "Invalid credentials.")
		return renderPage(c, "users/login", nil)
	}

	if err := exts.SetAuth(c, account.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	exts.Flash(c, "success", fmt.Sprintf("Hello, %s!", account.Name))
	return c.Redirect("/")
}

func doLogout(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}

	if err := exts.ClearAuth(c); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	exts.Flash(c, "success", "Logout successful!")
	return c.Redirect("/login")
}

func listAccount(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}

	accounts, err := services.ListAccount(c.Query("q"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return renderPage(c, "users/index", fiber.Map{
		"Users": accounts,
	})
}

func showAccount(c *fiber.Ctx) error {
	if _, ok := requireAuthenticated(c); !ok {
		return nil
	}

	id, _ := c.ParamsInt("accountId", 0)
	account, err := services.GetAccount(uint(id))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	messages, err := services.ListMessage(
		services.FilterMessageWithAuthor(database.C, account.ID),
		services.FeedLimit, 0,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return renderPage(c, "users/show", fiber.Map{
		"User":     account,
		"Messages": messages,
	})
}

func editProfilePage(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	return renderPage(c, "users/edit", fiber.Map{
		"User": user,
	})
}

func doEditProfile(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	var data struct {
		Name        string `form:"username" validate:"required,max=30"`
		Email       string `form:"email" validate:"required,email"`
		Avatar      string `form:"image_url" validate:"omitempty,url"`
		Banner      string `form:"header_image_url" validate:"omitempty,url"`
		Description string `form:"bio"`
		Location    string `form:"location"`
		Password    string `form:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		exts.Flash(c, "danger", err.Error())
		return renderPage(c, "users/edit", fiber.Map{"User": user})
	}

	account, err := services.EditProfile(user, services.ProfileChanges{
		Name:        data.Name,
		Email:       data.Email,
		Avatar:      data.Avatar,
		Banner:      data.Banner,
		Description: data.Description,
		Location:    data.Location,
	}, data.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			exts.Flash(c, "danger", "Wrong password")
			return renderPage(c, "users/edit", fiber.Map{"User": user})
		}
		if errors.Is(err, services.ErrAccountTaken) {
			exts.Flash(c, "danger", "Username or email already taken")
			return renderPage(c, "users/edit", fiber.Map{"User": user})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Redirect(fmt.Sprintf("/users/%d", account.ID))
}

func doDeleteAccount(c *fiber.Ctx) error {
	user, ok := requireAuthenticated(c)
	if !ok {
		return nil
	}

	if err := exts.ClearAuth(c); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err := services.DeleteAccount(user); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Redirect("/signup")
}
