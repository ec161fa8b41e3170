package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/caltman24/zaptrack/internal/api/dto"
	"github.com/caltman24/zaptrack/internal/auth"
	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/service"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

// TicketsHandler exposes the ticket mutation and query endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	queries *service.QueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, queries *service.QueryService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, queries: queries}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProjectID == "" {
		return apperrors.NewValidationError("project_id required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), member, service.TicketCreateInput{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Type:        req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.Context(), member, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List GET /tickets?bucket=open|resolved|archived|assigned.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	bucket := service.TicketBucket(c.Query("bucket", string(service.BucketOpen)))
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	tickets, err := h.queries.ListBucket(c.Context(), member, bucket, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Update PUT /tickets/:id — the combined five-field update.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.tickets.UpdateTicket(c.Context(), member, c.Params("id"), service.TicketUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Type:        req.Type,
	}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.tickets.UpdateStatus(c.Context(), member, c.Params("id"), req.Status); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdatePriority PUT /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.tickets.UpdatePriority(c.Context(), member, c.Params("id"), req.Priority); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateType PUT /tickets/:id/type.
func (h *TicketsHandler) UpdateType(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.tickets.UpdateType(c.Context(), member, c.Params("id"), req.Type); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AssignDeveloper PUT /tickets/:id/developer.
func (h *TicketsHandler) AssignDeveloper(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	var req dto.AssignDeveloperRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.tickets.AssignDeveloper(c.Context(), member, c.Params("id"), req.MemberID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ToggleArchive PUT /tickets/:id/archive.
func (h *TicketsHandler) ToggleArchive(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	if _, err := h.tickets.ToggleArchive(c.Context(), member, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.Context(), member, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// History GET /tickets/:id/history — full chronological timeline, or a
// window when page/pageSize are present.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	member, err := requireMember(c)
	if err != nil {
		return err
	}
	ticketID := c.Params("id")

	if c.Query("page") == "" && c.Query("pageSize") == "" {
		entries, err := h.queries.ListHistory(c.Context(), member, ticketID)
		if err != nil {
			return err
		}
		rendered, err := h.queries.Render(c.Context(), entries)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": historyResponses(rendered)})
	}

	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "pageSize", 10)
	window, err := h.queries.ListHistoryPage(c.Context(), member, ticketID, page, pageSize)
	if err != nil {
		return err
	}
	rendered, err := h.queries.Render(c.Context(), window.Entries)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryPageResponse{
		Entries:  historyResponses(rendered),
		Total:    window.Total,
		Page:     page,
		PageSize: pageSize,
	}})
}

func requireMember(c *fiber.Ctx) (*domain.Member, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Member == nil {
		return nil, apperrors.NewUnauthorized("member required")
	}
	return principal.Member, nil
}

func parseIntQuery(c *fiber.Ctx, key string, def int) int {
	val := c.Query(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		ProjectID:   ticket.ProjectID,
		SubmitterID: ticket.SubmitterID,
		AssigneeID:  ticket.AssigneeID,
		Name:        ticket.Name,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Type:        ticket.Type,
		IsArchived:  ticket.IsArchived,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func historyResponses(rendered []service.RenderedEntry) []dto.HistoryEntryResponse {
	result := make([]dto.HistoryEntryResponse, 0, len(rendered))
	for _, item := range rendered {
		entry := item.Entry
		result = append(result, dto.HistoryEntryResponse{
			ID:                entry.ID,
			TicketID:          entry.TicketID,
			CreatorID:         entry.CreatorID,
			Type:              entry.Type,
			OldValue:          entry.OldValue,
			NewValue:          entry.NewValue,
			RelatedEntityName: entry.RelatedEntityName,
			RelatedEntityID:   entry.RelatedEntityID,
			Message:           item.Message,
			CreatedAt:         entry.CreatedAt,
		})
	}
	return result
}
