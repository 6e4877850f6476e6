package custody

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/http/common"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type Handler struct {
	Service *usecase.CustodyService
}

func NewHandler(service *usecase.CustodyService) *Handler {
	return &Handler{Service: service}
}

type transitionRequest struct {
	KitCode            string  `json:"kit_code"`
	CustodianID        *string `json:"custodian_id"`
	CustodianName      string  `json:"custodian_name"`
	Notes              string  `json:"notes"`
	ExpectedReturnDate string  `json:"expected_return_date"`
}

func (h *Handler) HandleCheckout(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	returnDate, ok := parseReturnDate(c, req.ExpectedReturnDate)
	if !ok {
		return
	}
	event, kit, err := h.Service.CheckoutOnPrem(c.Request.Context(), usecase.CheckoutInput{
		KitCode:            req.KitCode,
		CustodianID:        req.CustodianID,
		CustodianName:      strings.TrimSpace(req.CustodianName),
		Notes:              req.Notes,
		ExpectedReturnDate: returnDate,
		Actor:              actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	writeTransition(c, event, kit)
}

func (h *Handler) HandleTransfer(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	event, kit, err := h.Service.Transfer(c.Request.Context(), usecase.TransferInput{
		KitCode:       req.KitCode,
		CustodianID:   req.CustodianID,
		CustodianName: strings.TrimSpace(req.CustodianName),
		Notes:         req.Notes,
		Actor:         actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	writeTransition(c, event, kit)
}

func (h *Handler) HandleCheckin(c *gin.Context) {
	h.handleReport(c, h.Service.CheckIn)
}

func (h *Handler) HandleReportLost(c *gin.Context) {
	h.handleReport(c, h.Service.ReportLost)
}

func (h *Handler) HandleReportFound(c *gin.Context) {
	h.handleReport(c, h.Service.ReportFound)
}

type reportOp func(context.Context, usecase.ReportInput) (custody.CustodyEvent, custody.Kit, error)

func (h *Handler) handleReport(c *gin.Context, op reportOp) {
	actor, ok := common.ActorFromContext(c)
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
	event, kit, err := op(c.Request.Context(), usecase.ReportInput{
		KitCode: strings.TrimSpace(req.KitCode),
		Notes:   req.Notes,
		Actor:   actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	writeTransition(c, event, kit)
}

func bindTransition(c *gin.Context) (transitionRequest, bool) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return transitionRequest{}, false
	}
	req.KitCode = strings.TrimSpace(req.KitCode)
	if req.KitCode == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "kit_code is required")
		return transitionRequest{}, false
	}
	if !common.ValidateUUIDField(c, "custodian_id", req.CustodianID) {
		return transitionRequest{}, false
	}
	return req, true
}

func parseReturnDate(c *gin.Context, raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "expected_return_date must be YYYY-MM-DD")
		return nil, false
	}
	return &parsed, true
}

func writeTransition(c *gin.Context, event custody.CustodyEvent, kit custody.Kit) {
	c.JSON(http.StatusOK, gin.H{
		"event": common.ToEventResponse(event),
		"kit":   common.ToKitResponse(kit),
	})
}
