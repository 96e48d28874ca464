package exts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthKey is the session key holding the signed-in account id.
const AuthKey = "curr_user"

// Sessions is the shared cookie session store, assigned during server setup.
var Sessions *session.Store

func UseSession(c *fiber.Ctx) (*session.Session, error) {
	return Sessions.Get(c)
}

// SetAuth marks the session as belonging to the given account id.
func SetAuth(c *fiber.Ctx, id uint) error {
	session, err := UseSession(c)
	if err != nil {
		return err
	}
	session.Set(AuthKey, id)
	return session.Save()
}

// ClearAuth signs the session out. Missing auth state is not an error.
func ClearAuth(c *fiber.Ctx) error {
	session, err := UseSession(c)
	if err != nil {
		return err
	}
	session.Delete(AuthKey)
	return session.Save()
}

// GetAuth resolves the signed-in account id from the session.
func GetAuth(c *fiber.Ctx) (uint, bool) {
	session, err := UseSession(c)
	if err != nil {
		return 0, false
	}
	id, ok := session.Get(AuthKey).(uint)
	return id, ok
}
