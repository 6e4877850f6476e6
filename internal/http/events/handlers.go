package events

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/http/common"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type Handler struct {
	Kits   *usecase.KitService
	Export *usecase.ExportService
}

func NewHandler(kits *usecase.KitService, export *usecase.ExportService) *Handler {
	return &Handler{Kits: kits, Export: export}
}

func (h *Handler) HandleKitTimeline(c *gin.Context) {
	subjectID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.handleTimeline(c, usecase.ScopeKit, subjectID)
}

func (h *Handler) HandleUserTimeline(c *gin.Context) {
	subjectID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.handleTimeline(c, usecase.ScopeUser, subjectID)
}

func (h *Handler) handleTimeline(c *gin.Context, scope usecase.TimelineScope, subjectID string) {
	filter, ok := timelineFilter(c, scope, subjectID)
	if !ok {
		return
	}
	events, total, err := h.Kits.Timeline(c.Request.Context(), filter)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	items := make([]common.EventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, common.ToEventResponse(event))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})
}

func (h *Handler) HandleExport(c *gin.Context) {
	actor, ok := common.ActorFromContext(c)
	if !ok {
		return
	}
	scope := usecase.ScopeKit
	if strings.TrimSpace(c.Query("scope")) == string(usecase.ScopeUser) {
		scope = usecase.ScopeUser
	}
	// No subject means the whole ledger; that is the organization-wide
	// audit export.
	subjectID := strings.TrimSpace(c.Query("subject_id"))
	if !common.ValidateUUIDField(c, "subject_id", &subjectID) {
		return
	}
	filter, ok := timelineFilter(c, scope, subjectID)
	if !ok {
		return
	}
	format := usecase.ExportFormat(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	if format != usecase.ExportCSV && format != usecase.ExportJSON {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "format must be csv or json")
		return
	}
	var buf bytes.Buffer
	if err := h.Export.ExportEvents(c.Request.Context(), actor, filter, format, &buf); err != nil {
		common.WriteError(c, err)
		return
	}
	if format == usecase.ExportCSV {
		c.Header("Content-Disposition", `attachment; filename="custody_events.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

func timelineFilter(c *gin.Context, scope usecase.TimelineScope, subjectID string) (usecase.TimelineFilter, bool) {
	filter := usecase.TimelineFilter{
		Scope:     scope,
		SubjectID: subjectID,
		EventType: custody.EventType(strings.TrimSpace(c.Query("event_type"))),
		SortAsc:   strings.TrimSpace(c.Query("sort")) == "asc",
	}
	start, ok := common.ParseDateQuery(c, "start")
	if !ok {
		return usecase.TimelineFilter{}, false
	}
	filter.Start = start
	end, ok := common.ParseDateQuery(c, "end")
	if !ok {
		return usecase.TimelineFilter{}, false
	}
	filter.End = end
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
	return filter, true
}
