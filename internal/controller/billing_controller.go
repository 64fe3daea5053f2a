package controller

import (
	"time"

	"mentor-ai-be/internal/dto"
	"mentor-ai-be/internal/pkg/apperror"
	"mentor-ai-be/internal/pkg/serverutils"
	"mentor-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IBillingController exposes the quota intake used by the billing service.
type IBillingController interface {
	RegisterRoutes(r fiber.Router, internalMiddleware fiber.Handler)
	UpsertQuota(ctx *fiber.Ctx) error
}

type billingController struct {
	quotaService service.IQuotaService
}

func NewBillingController(quotaService service.IQuotaService) IBillingController {
	return &billingController{quotaService: quotaService}
}

func (c *billingController) RegisterRoutes(r fiber.Router, internalMiddleware fiber.Handler) {
	h := r.Group("/internal", internalMiddleware)
	h.Put("/quotas/:userId", c.UpsertQuota)
}

// UpsertQuota replaces the user's allowance and resets usage for a new period
// @Summary Provision message quota
// @Tags Internal
// @Accept json
// @Produce json
// @Param X-Internal-Token header string true "Service token"
// @Param request body dto.UpsertQuotaRequest true "Quota"
// @Success 200 {object} dto.AllowanceResponse
// @Router /api/internal/quotas/{userId} [put]
func (c *billingController) UpsertQuota(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return apperror.Validation("invalid user id")
	}

	var req dto.UpsertQuotaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	var periodStart time.Time
	if req.PeriodStart != nil {
		periodStart = *req.PeriodStart
	}

	allowance, err := c.quotaService.Upsert(ctx.UserContext(), userId, req.Plan, req.MaxMessages, periodStart)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Quota provisioned", allowance))
}
