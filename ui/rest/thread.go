package rest

import (
	"github.com/gofiber/fiber/v2"

	domainThread "github.com/fintari/gramthread/domains/thread"
	"github.com/fintari/gramthread/pkg/utils"
)

type Thread struct {
	Service domainThread.IThreadUsecase
}

func InitRestThread(app fiber.Router, service domainThread.IThreadUsecase) Thread {
	rest := Thread{Service: service}

	app.Get("/threads", rest.ListThreads)
	app.Get("/threads/:thread_id", rest.GetThread)
	app.Post("/threads/:thread_id/messages", rest.SendText)
	app.Post("/threads/:thread_id/photo", rest.SendPhoto)
	app.Post("/threads/:thread_id/voice", rest.SendVoice)
	app.Post("/threads/:thread_id/typing/start", rest.StartTyping)
	app.Post("/threads/:thread_id/typing/stop", rest.StopTyping)
	app.Post("/threads/:thread_id/approve", rest.Approve)
	app.Post("/threads/:thread_id/items/:item_id/seen", rest.MarkItemSeen)
	app.Delete("/threads/:thread_id/items/:item_id", rest.DeleteItem)
	return rest
}

func (controller *Thread) ListThreads(c *fiber.Ctx) error {
	threads, err := controller.Service.ListThreads(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Threads fetched",
		Results: threads,
	})
}

func (controller *Thread) GetThread(c *fiber.Ctx) error {
	detail, err := controller.Service.GetThread(c.UserContext(), c.Params("thread_id"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Thread fetched",
		Results: detail,
	})
}

func (controller *Thread) SendText(c *fiber.Ctx) error {
	var request domainThread.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	request.ThreadID = c.Params("thread_id")

	response, err := controller.Service.SendText(c.UserContext(), request)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Message sent successfully",
		Results: response,
	})
}

func (controller *Thread) SendPhoto(c *fiber.Ctx) error {
	var request domainThread.SendPhotoRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	request.ThreadID = c.Params("thread_id")

	response, err := controller.Service.SendPhoto(c.UserContext(), request)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Photo sent successfully",
		Results: response,
	})
}

func (controller *Thread) SendVoice(c *fiber.Ctx) error {
	var request domainThread.SendVoiceRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	request.ThreadID = c.Params("thread_id")

	response, err := controller.Service.SendVoice(c.UserContext(), request)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Voice message sent successfully",
		Results: response,
	})
}

func (controller *Thread) StartTyping(c *fiber.Ctx) error {
	var request domainThread.TypingRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Message: err.Error()})
	}

	request.ThreadID = c.Params("thread_id")

	if err := controller.Service.StartTyping(c.UserContext(), request); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Typing started",
	})
}

func (controller *Thread) StopTyping(c *fiber.Ctx) error {
	if err := controller.Service.StopTyping(c.UserContext(), c.Params("thread_id")); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Typing stopped",
	})
}

func (controller *Thread) Approve(c *fiber.Ctx) error {
	if err := controller.Service.Approve(c.UserContext(), c.Params("thread_id")); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Thread approved",
	})
}

func (controller *Thread) MarkItemSeen(c *fiber.Ctx) error {
	request := domainThread.ItemRequest{
		ThreadID: c.Params("thread_id"),
		ItemID:   c.Params("item_id"),
	}

	if err := controller.Service.MarkItemSeen(c.UserContext(), request); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Item marked as seen",
	})
}

func (controller *Thread) DeleteItem(c *fiber.Ctx) error {
	request := domainThread.ItemRequest{
		ThreadID: c.Params("thread_id"),
		ItemID:   c.Params("item_id"),
	}

	if err := controller.Service.DeleteItem(c.UserContext(), request); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Item deleted",
	})
}
