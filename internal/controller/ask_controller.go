package controller

import (
	"encoding/json"
	"strings"

	"ask-engine-be/internal/dto"
	"ask-engine-be/internal/pkg/errs"
	"ask-engine-be/internal/pkg/serverutils"
	"ask-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type askController struct {
	service service.IAskService
}

func NewAskController(service service.IAskService) IAskController {
	return &askController{service: service}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ask/v1")
	h.Post("", c.Ask)
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewClientError("Missing or invalid 'query'")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	query, opts, err := extractQuery(&req)
	if err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.Context(), query, opts)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// extractQuery accepts either a direct query field or a wrapped serialized
// body carrying the same fields. The direct field wins when both are set.
func extractQuery(req *dto.AskRequest) (string, service.AskOptions, error) {
	query := req.Query
	opts := service.AskOptions{
		K:         req.K,
		UseFacets: req.UseFacets,
		UseRerank: req.UseRerank,
	}

	if strings.TrimSpace(query) == "" && req.Body != "" {
		var wrapped dto.WrappedAskBody
		if err := json.Unmarshal([]byte(req.Body), &wrapped); err != nil {
			return "", opts, errs.NewClientError("Missing or invalid 'query'")
		}
		query = wrapped.Query
		opts = service.AskOptions{
			K:         wrapped.K,
			UseFacets: wrapped.UseFacets,
			UseRerank: wrapped.UseRerank,
		}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return "", opts, errs.NewClientError("Missing or invalid 'query'")
	}

	return query, opts, nil
}
