package http

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/config"
	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/http/approvals"
	"github.com/J2WFFDev/custody-manager/internal/http/auth"
	"github.com/J2WFFDev/custody-manager/internal/http/common"
	custodyhttp "github.com/J2WFFDev/custody-manager/internal/http/custody"
	"github.com/J2WFFDev/custody-manager/internal/http/events"
	"github.com/J2WFFDev/custody-manager/internal/http/items"
	"github.com/J2WFFDev/custody-manager/internal/http/kits"
	"github.com/J2WFFDev/custody-manager/internal/http/maintenance"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type Server struct {
	cfg           config.Config
	r             *gin.Engine
	authenticator common.Authenticator
	rateLimiter   custody.RateLimiter

	kitHandler         *kits.Handler
	custodyHandler     *custodyhttp.Handler
	approvalHandler    *approvals.Handler
	maintenanceHandler *maintenance.Handler
	eventHandler       *events.Handler
	itemHandler        *items.Handler
}

type ServerDeps struct {
	Kits          *usecase.KitService
	Custody       *usecase.CustodyService
	Approvals     *usecase.ApprovalService
	Maintenance   *usecase.MaintenanceService
	Export        *usecase.ExportService
	Items         *usecase.ItemService
	Authenticator common.Authenticator
	RateLimiter   custody.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:                cfg,
		r:                  r,
		authenticator:      deps.Authenticator,
		rateLimiter:        deps.RateLimiter,
		kitHandler:         kits.NewHandler(deps.Kits),
		custodyHandler:     custodyhttp.NewHandler(deps.Custody),
		approvalHandler:    approvals.NewHandler(deps.Approvals),
		maintenanceHandler: maintenance.NewHandler(deps.Maintenance),
		eventHandler:       events.NewHandler(deps.Kits, deps.Export),
		itemHandler:        items.NewHandler(deps.Items),
	}
	if s.authenticator == nil {
		s.authenticator = auth.NewBearerAuthenticator(cfg.AuthSecret)
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("custody-manager listening on %s", addr)
	return s.r.Run(addr)
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := s.r.Group("/v1")
	v1.Use(common.AuthMiddleware(s.authenticator), s.rateLimitMiddleware())
	{
		v1.POST("/kits", s.kitHandler.HandleCreate)
		v1.GET("/kits", s.kitHandler.HandleList)
		v1.GET("/kits/:code", s.kitHandler.HandleLookup)
		v1.GET("/kits/:code/warnings", s.kitHandler.HandleWarnings)
		v1.GET("/kits/:code/items", s.itemHandler.HandleKitItems)
		v1.GET("/warnings", s.kitHandler.HandleListWarnings)

		v1.POST("/items", s.itemHandler.HandleCreate)
		v1.GET("/items", s.itemHandler.HandleList)
		v1.GET("/items/:id", s.itemHandler.HandleGet)
		v1.PUT("/items/:id", s.itemHandler.HandleUpdate)
		v1.DELETE("/items/:id", s.itemHandler.HandleDelete)
		v1.POST("/items/:id/assign", s.itemHandler.HandleAssign)
		v1.POST("/items/:id/unassign", s.itemHandler.HandleUnassign)

		v1.POST("/custody/checkout", s.custodyHandler.HandleCheckout)
		v1.POST("/custody/transfer", s.custodyHandler.HandleTransfer)
		v1.POST("/custody/checkin", s.custodyHandler.HandleCheckin)
		v1.POST("/custody/lost", s.custodyHandler.HandleReportLost)
		v1.POST("/custody/found", s.custodyHandler.HandleReportFound)

		v1.POST("/approvals", s.approvalHandler.HandleCreate)
		v1.POST("/approvals/:id/decide", s.approvalHandler.HandleDecide)
		v1.GET("/approvals/pending", s.approvalHandler.HandleListPending)

		v1.POST("/maintenance/open", s.maintenanceHandler.HandleOpen)
		v1.POST("/maintenance/close", s.maintenanceHandler.HandleClose)

		v1.GET("/events/kit/:id", s.eventHandler.HandleKitTimeline)
		v1.GET("/events/user/:id", s.eventHandler.HandleUserTimeline)
		v1.GET("/events/export", s.eventHandler.HandleExport)
	}
}
