package kits

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/http/common"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type Handler struct {
	Service *usecase.KitService
}

func NewHandler(service *usecase.KitService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) HandleCreate(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	var req struct {
		Code         string `json:"code"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		SerialNumber string `json:"serial_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "code and name are required")
		return
	}
	kit, err := h.Service.CreateKit(c.Request.Context(), usecase.CreateKitInput{
		Code:         strings.TrimSpace(req.Code),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		SerialNumber: req.SerialNumber,
		Actor:        actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"kit": common.ToKitResponse(kit)})
}

func (h *Handler) HandleList(c *gin.Context) {
	filter := usecase.ListKitsFilter{
		Status: custody.KitStatus(strings.TrimSpace(c.Query("status"))),
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	views, total, err := h.Service.ListKits(c.Request.Context(), filter)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	items := make([]gin.H, 0, len(views))
	for _, view := range views {
		items = append(items, gin.H{
			"kit":      common.ToKitResponse(view.Kit),
			"warnings": view.Warnings,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})
}

func (h *Handler) HandleLookup(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "code is required")
		return
	}
	kit, err := h.Service.LookupByCode(c.Request.Context(), code)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kit": common.ToKitResponse(kit)})
}

func (h *Handler) HandleWarnings(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "code is required")
		return
	}
	kit, err := h.Service.LookupByCode(c.Request.Context(), code)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	view, err := h.Service.GetKitWithWarnings(c.Request.Context(), kit.ID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kit":      common.ToKitResponse(view.Kit),
		"warnings": view.Warnings,
	})
}

func (h *Handler) HandleListWarnings(c *gin.Context) {
	views, err := h.Service.ListCheckedOutWithWarnings(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	items := make([]gin.H, 0, len(views))
	for _, view := range views {
		items = append(items, gin.H{
			"kit":      common.ToKitResponse(view.Kit),
			"warnings": view.Warnings,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
