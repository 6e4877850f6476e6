package approvals

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/http/common"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type Handler struct {
	Service *usecase.ApprovalService
}

func NewHandler(service *usecase.ApprovalService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) HandleCreate(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	var req struct {
		KitCode              string  `json:"kit_code"`
		CustodianID          *string `json:"custodian_id"`
		CustodianName        string  `json:"custodian_name"`
		Notes                string  `json:"notes"`
		ExpectedReturnDate   string  `json:"expected_return_date"`
		AttestationAccepted  bool    `json:"attestation_accepted"`
		AttestationSignature string  `json:"attestation_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.KitCode) == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "kit_code is required")
		return
	}
	if !common.ValidateUUIDField(c, "custodian_id", req.CustodianID) {
		return
	}
	var returnDate *time.Time
	if raw := strings.TrimSpace(req.ExpectedReturnDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "expected_return_date must be YYYY-MM-DD")
			return
		}
		returnDate = &parsed
	}
	request, err := h.Service.CreateOffsiteRequest(c.Request.Context(), usecase.OffsiteRequestInput{
		KitCode:              strings.TrimSpace(req.KitCode),
		CustodianID:          req.CustodianID,
		CustodianName:        strings.TrimSpace(req.CustodianName),
		Notes:                req.Notes,
		ExpectedReturnDate:   returnDate,
		AttestationAccepted:  req.AttestationAccepted,
		AttestationSignature: strings.TrimSpace(req.AttestationSignature),
		Origin:               c.ClientIP(),
		Actor:                actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": common.ToApprovalResponse(request)})
}

func (h *Handler) HandleDecide(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	requestID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Approve      bool   `json:"approve"`
		DenialReason string `json:"denial_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	request, event, kit, err := h.Service.Decide(c.Request.Context(), usecase.DecideInput{
		RequestID:    requestID,
		Approve:      req.Approve,
		DenialReason: strings.TrimSpace(req.DenialReason),
		Actor:        actor,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	payload := gin.H{"request": common.ToApprovalResponse(request)}
	if event != nil {
		payload["event"] = common.ToEventResponse(*event)
	}
	if kit != nil {
		payload["kit"] = common.ToKitResponse(*kit)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) HandleListPending(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	requests, err := h.Service.ListPending(c.Request.Context(), actor)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	items := make([]common.ApprovalResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, common.ToApprovalResponse(request))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
