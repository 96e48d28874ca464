package exts

import (
	"github.com/gofiber/fiber/v2"
)

const flashKey = "flashes"

// FlashMessage is a one-shot notice shown on the next rendered page.
type FlashMessage struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Flash queues a notice in the session; it survives exactly one redirect.
func Flash(c *fiber.Ctx, category, message string) {
	session, err := UseSession(c)
	if err != nil {
		return
	}

	queue, _ := session.Get(flashKey).([]FlashMessage)
	queue = append(queue, FlashMessage{Category: category, Message: message})
	session.Set(flashKey, queue)
	_ = session.Save()
}

// ConsumeFlashes drains the queued notices for rendering.
func ConsumeFlashes(c *fiber.Ctx) []FlashMessage {
	session, err := UseSession(c)
	if err != nil {
		return nil
	}

	queue, _ := session.Get(flashKey).([]FlashMessage)
	if len(queue) > 0 {
		session.Delete(flashKey)
		_ = session.Save()
	}
	return queue
}
