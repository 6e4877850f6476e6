package items

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
	Service *usecase.ItemService
}

func NewHandler(service *usecase.ItemService) *Handler {
	return &Handler{Service: service}
}

type itemRequest struct {
	ItemType     string `json:"item_type"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	FriendlyName string `json:"friendly_name"`
	PhotoURL     string `json:"photo_url"`
	Quantity     *int   `json:"quantity"`
	Notes        string `json:"notes"`
	KitCode      string `json:"kit_code"`
}

func (h *Handler) HandleCreate(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.ItemType) == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "item_type is required")
		return
	}
	item, err := h.Service.CreateItem(c.Request.Context(), usecase.CreateItemInput{
		Type:         custody.ItemType(strings.TrimSpace(req.ItemType)),
		Make:         req.Make,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		FriendlyName: req.FriendlyName,
		PhotoURL:     req.PhotoURL,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
		KitCode:      strings.TrimSpace(req.KitCode),
		Actor:        actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": common.ToItemResponse(item)})
}

func (h *Handler) HandleGet(c *gin.Context) {
	itemID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.Service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": common.ToItemResponse(item)})
}

func (h *Handler) HandleList(c *gin.Context) {
	filter := usecase.ItemListFilter{
		Status: custody.ItemStatus(strings.TrimSpace(c.Query("status"))),
		Type:   custody.ItemType(strings.TrimSpace(c.Query("item_type"))),
	}
	if raw := strings.TrimSpace(c.Query("assigned")); raw != "" {
		assigned, err := strconv.ParseBool(raw)
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "assigned must be a boolean")
			return
		}
		filter.Assigned = &assigned
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
	items, total, err := h.Service.ListItems(c.Request.Context(), filter)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	out := make([]common.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, common.ToItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  out,
		"total":  total,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})
}

type updateRequest struct {
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	SerialNumber *string `json:"serial_number"`
	FriendlyName *string `json:"friendly_name"`
	PhotoURL     *string `json:"photo_url"`
	Quantity     *int    `json:"quantity"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

func (h *Handler) HandleUpdate(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	itemID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	input := usecase.UpdateItemInput{
		ItemID:       itemID,
		Make:         req.Make,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		FriendlyName: req.FriendlyName,
		PhotoURL:     req.PhotoURL,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
		Actor:        actor,
	}
	if req.Status != nil {
		status := custody.ItemStatus(strings.TrimSpace(*req.Status))
		input.Status = &status
	}
	item, err := h.Service.UpdateItem(c.Request.Context(), input)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": common.ToItemResponse(item)})
}

func (h *Handler) HandleAssign(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	itemID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		KitCode string `json:"kit_code"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.KitCode) == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "kit_code is required")
		return
	}
	item, err := h.Service.AssignToKit(c.Request.Context(), usecase.AssignItemInput{
		ItemID:  itemID,
		KitCode: strings.TrimSpace(req.KitCode),
		Notes:   req.Notes,
		Actor:   actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": common.ToItemResponse(item)})
}

func (h *Handler) HandleUnassign(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	itemID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.Service.UnassignFromKit(c.Request.Context(), itemID, actor)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": common.ToItemResponse(item)})
}

func (h *Handler) HandleDelete(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	itemID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteItem(c.Request.Context(), itemID, actor); err != nil {
		common.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleKitItems lists the items currently assigned to a kit.
func (h *Handler) HandleKitItems(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "code is required")
		return
	}
	items, err := h.Service.ListKitItems(c.Request.Context(), code)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	out := make([]common.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, common.ToItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
