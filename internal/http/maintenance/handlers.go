package maintenance

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/http/common"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type Handler struct {
	Service *usecase.MaintenanceService
}

func NewHandler(service *usecase.MaintenanceService) *Handler {
	return &Handler{Service: service}
}

type maintenanceRequest struct {
	KitCode             string `json:"kit_code"`
	Notes               string `json:"notes"`
	PartsReplaced       string `json:"parts_replaced"`
	RoundCount          *int   `json:"round_count"`
	NextMaintenanceDate string `json:"next_maintenance_date"`
}

func (h *Handler) HandleOpen(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	input, ok := bindMaintenance(c)
	if !ok {
		return
	}
	input.Actor = actor
	event, kit, err := h.Service.Open(c.Request.Context(), input)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"maintenance": common.ToMaintenanceResponse(event),
		"kit":         common.ToKitResponse(kit),
	})
}

func (h *Handler) HandleClose(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	input, ok := bindMaintenance(c)
	if !ok {
		return
	}
	input.Actor = actor
	event, kit, err := h.Service.Close(c.Request.Context(), input)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"maintenance": common.ToMaintenanceResponse(event),
		"kit":         common.ToKitResponse(kit),
	})
}

func bindMaintenance(c *gin.Context) (usecase.MaintenanceInput, bool) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return usecase.MaintenanceInput{}, false
	}
	if strings.TrimSpace(req.KitCode) == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "kit_code is required")
		return usecase.MaintenanceInput{}, false
	}
	input := usecase.MaintenanceInput{
		KitCode:       strings.TrimSpace(req.KitCode),
		Notes:         req.Notes,
		PartsReplaced: req.PartsReplaced,
		RoundCount:    req.RoundCount,
	}
	if raw := strings.TrimSpace(req.NextMaintenanceDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "next_maintenance_date must be YYYY-MM-DD")
			return usecase.MaintenanceInput{}, false
		}
		input.NextMaintenanceDate = &parsed
	}
	return input, true
}
