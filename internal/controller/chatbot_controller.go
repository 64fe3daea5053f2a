package controller

import (
	"mentor-ai-be/internal/dto"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/pkg/serverutils"
	"mentor-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
}

type chatbotController struct {
	sessionService service.ISessionService
	messageService service.IMessageService
	chatbotService service.IChatbotService
}

func NewChatbotController(
	sessionService service.ISessionService,
	messageService service.IMessageService,
	chatbotService service.IChatbotService,
) IChatbotController {
	return &chatbotController{
		sessionService: sessionService,
		messageService: messageService,
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/sessions", jwtMiddleware)
	h.Post("", c.CreateSession)
	h.Get("", c.GetAllSessions)
	h.Get("/:id", c.ShowSession)
	h.Delete("/:id", c.DeleteSession)
	h.Post("/:id/messages", c.SendChat)
	h.Get("/:id/messages", c.GetMessages)
}

// sessionParam treats a malformed id like an unknown session.
func sessionParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("chat session not found")
	}
	return id, nil
}

// CreateSession opens a new conversation
// @Summary Create chat session
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest true "Session"
// @Success 201 {object} dto.SessionResponse
// @Router /api/sessions [post]
func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	session, err := c.sessionService.Create(ctx.UserContext(), userId, req.Title, req.SystemPrompt)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create chat session", dto.NewSessionResponse(session)))
}

// GetAllSessions lists the caller's sessions, oldest first.
// An owner query for anyone but the caller answers 404.
func (c *chatbotController) GetAllSessions(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	if owner := ctx.Query("owner"); owner != "" {
		ownerId, err := uuid.Parse(owner)
		if err != nil || ownerId != userId {
			return apperror.NotFound("user not found")
		}
	}

	sessions, err := c.sessionService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chat sessions", dto.NewSessionResponses(sessions)))
}

func (c *chatbotController) ShowSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	session, err := c.sessionService.Get(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat session", dto.NewSessionResponse(session)))
}

// DeleteSession removes a session and its messages
// @Summary Delete chat session
// @Tags Chat
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} serverutils.BaseResponse[any] "An exchange is in flight"
// @Router /api/sessions/{id} [delete]
func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// SendChat runs one quota-gated exchange with the mentor
// @Summary Send chat message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SendChatRequest true "Message"
// @Success 200 {object} dto.SendChatResponse
// @Failure 402 {object} serverutils.BaseResponse[any] "Message limit reached"
// @Failure 409 {object} serverutils.BaseResponse[any] "Subscription inactive or exchange in flight"
// @Failure 502 {object} serverutils.BaseResponse[any] "Completion provider failed"
// @Router /api/sessions/{id}/messages [post]
func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.SendChat(ctx.UserContext(), userId, id, req.Content)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatbotController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionParam(ctx)
	if err != nil {
		return err
	}

	messages, err := c.messageService.List(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", dto.NewChatMessageResponses(messages)))
}
