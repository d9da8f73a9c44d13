// internal/handlers/agent/agent_handler.go
package agent

import (
	"errors"
	"net/http"
	"strconv"

	domain "agentmarket-service/internal/domain/agent"
	"agentmarket-service/internal/middleware"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/response"
	service "agentmarket-service/internal/service/agent"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentHandler serves the seller-facing agent lifecycle and the admin
// moderation queue.
type AgentHandler struct {
	agentService *service.AgentService
	logger       *zap.Logger
}

func NewAgentHandler(agentService *service.AgentService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		logger:       logger,
	}
}

func agentIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid agent ID", err)
		return 0, false
	}
	return id, true
}

func (h *AgentHandler) CreateDraft(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)

	var req domain.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	a, err := h.agentService.CreateDraft(c.Request.Context(), sellerID, &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "unknown category", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create agent", err)
		return
	}

	response.Success(c, http.StatusCreated, "agent created", a)
}

func (h *AgentHandler) UpdateDraft(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	var req domain.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	a, err := h.agentService.UpdateDraft(c.Request.Context(), sellerID, agentID, &req)
	if err != nil {
		h.writeAgentError(c, err, "failed to update agent")
		return
	}

	response.Success(c, http.StatusOK, "agent updated", a)
}

func (h *AgentHandler) SubmitForReview(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	a, err := h.agentService.SubmitForReview(c.Request.Context(), sellerID, agentID)
	if err != nil {
		h.writeAgentError(c, err, "failed to submit agent")
		return
	}

	response.Success(c, http.StatusOK, "agent submitted for review", a)
}

func (h *AgentHandler) Archive(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	if err := h.agentService.Archive(c.Request.Context(), sellerID, agentID); err != nil {
		h.writeAgentError(c, err, "failed to archive agent")
		return
	}

	response.Success(c, http.StatusOK, "agent archived", nil)
}

// NewVersion opens a draft update against an approved agent.
func (h *AgentHandler) NewVersion(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	a, err := h.agentService.NewVersion(c.Request.Context(), sellerID, agentID)
	if err != nil {
		h.writeAgentError(c, err, "failed to create new version")
		return
	}

	response.Success(c, http.StatusCreated, "new version created", a)
}

func (h *AgentHandler) ListMine(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)

	agents, err := h.agentService.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list agents", err)
		return
	}

	response.Success(c, http.StatusOK, "agents retrieved", agents)
}

func (h *AgentHandler) GetMine(c *gin.Context) {
	sellerID := middleware.MustGetUserID(c)
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	a, err := h.agentService.GetOwned(c.Request.Context(), sellerID, agentID)
	if err != nil {
		h.writeAgentError(c, err, "failed to get agent")
		return
	}

	response.Success(c, http.StatusOK, "agent retrieved", a)
}

// ReviewQueue lists agents awaiting moderation. Admin only.
func (h *AgentHandler) ReviewQueue(c *gin.Context) {
	agents, err := h.agentService.ListUnderReview(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list review queue", err)
		return
	}

	response.Success(c, http.StatusOK, "review queue retrieved", agents)
}

// Approve moves an agent from under_review to approved. Admin only.
func (h *AgentHandler) Approve(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	a, err := h.agentService.Approve(c.Request.Context(), agentID)
	if err != nil {
		h.writeAgentError(c, err, "failed to approve agent")
		return
	}

	response.Success(c, http.StatusOK, "agent approved", a)
}

// Reject moves an agent from under_review to rejected with a reason. Admin only.
func (h *AgentHandler) Reject(c *gin.Context) {
	agentID, ok := agentIDParam(c)
	if !ok {
		return
	}

	var req domain.RejectAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "rejection reason is required", err)
		return
	}

	a, err := h.agentService.Reject(c.Request.Context(), agentID, req.Reason)
	if err != nil {
		h.writeAgentError(c, err, "failed to reject agent")
		return
	}

	response.Success(c, http.StatusOK, "agent rejected", a)
}

func (h *AgentHandler) writeAgentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "agent not found")
	case errors.Is(err, xerrors.ErrForbidden):
		response.Forbidden(c, "you do not own this agent")
	case errors.Is(err, xerrors.ErrInvalidTransition):
		response.Conflict(c, "agent is not in a valid state for this action", err)
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.ValidationError(c, fallback, err)
	default:
		response.Error(c, http.StatusInternalServerError, fallback, err)
	}
}
