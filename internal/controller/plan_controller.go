// Controller for plan, quota and usage endpoints
package controller

import (
	"mentor-ai-be/internal/dto"
	"mentor-ai-be/internal/pkg/serverutils"
	"mentor-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PlanController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type planController struct {
	quotaService   service.IQuotaService
	sessionService service.ISessionService
	messageService service.IMessageService
}

func NewPlanController(
	quotaService service.IQuotaService,
	sessionService service.ISessionService,
	messageService service.IMessageService,
) PlanController {
	return &planController{
		quotaService:   quotaService,
		sessionService: sessionService,
		messageService: messageService,
	}
}

func (c *planController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	// Public endpoints
	api.Get("/plans", c.GetAllPlans)

	// Authenticated endpoints
	api.Get("/quota", jwtMiddleware, c.GetQuota)
	api.Get("/usage", jwtMiddleware, c.GetUsage)
}

// GetAllPlans returns the plan catalog
// @Summary Get all subscription plans
// @Tags Plans
// @Produce json
// @Success 200 {object} []dto.PlanResponse
// @Router /api/plans [get]
func (c *planController) GetAllPlans(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", c.quotaService.Plans()))
}

// GetQuota returns the caller's remaining allowance without spending any
// @Summary Get message allowance
// @Tags User
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.AllowanceResponse
// @Router /api/quota [get]
func (c *planController) GetQuota(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	allowance, err := c.quotaService.Peek(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Quota retrieved", allowance))
}

// GetUsage returns allowance plus session and message counts for the dashboard
// @Summary Get usage summary
// @Tags User
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UsageSummaryResponse
// @Router /api/usage [get]
func (c *planController) GetUsage(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.UserContext()

	allowance, err := c.quotaService.Peek(reqCtx, userId)
	if err != nil {
		return err
	}
	sessionCount, err := c.sessionService.Count(reqCtx, userId)
	if err != nil {
		return err
	}
	messageCount, err := c.messageService.CountUserMessages(reqCtx, userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Usage status retrieved", dto.UsageSummaryResponse{
		UserId:           userId,
		Allowance:        *allowance,
		SessionCount:     sessionCount,
		UserMessageCount: messageCount,
	}))
}
