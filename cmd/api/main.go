package main

import (
	"net/http"

	_ "approvalflow/api/swagger" // swagger docs
	"approvalflow/internal/app"
	"approvalflow/internal/config"
	"approvalflow/internal/database"
	"approvalflow/internal/handler"
	"approvalflow/internal/logging"
	"approvalflow/internal/middleware"
	"approvalflow/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Approval Workflow API
// @version         1.0
// @description     Submission, routing and multi-stage approval of internal request forms.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env", ".env")
	if err != nil {
		logrus.Fatalf("Configuration invalid: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	logger.Info("Connected to PostgreSQL successfully.")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Fatalf("Migration failed: %v", err)
		}
	}
	// Missing tables or columns are a configuration error; refuse to serve.
	if err := database.ValidateSchema(db); err != nil {
		logger.Fatalf("Schema check failed: %v", err)
	}

	a, err := app.New(cfg, db, logger)
	if err != nil {
		logger.Fatalf("Startup failed: %v", err)
	}
	defer a.Close()
	go a.Hub.Run()

	approvalHandler := handler.NewApprovalHandler(a.Approvals)
	approverHandler := handler.NewApproverHandler(a.Approvers)
	chainHandler := handler.NewITChainHandler(a.Chains)
	settingsHandler := handler.NewSettingsHandler(a.Settings)
	auditHandler := handler.NewAuditHandler(a.Audit)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(logging.GinMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(a.Hub, c, cfg.Secret())
	})

	api := router.Group("")
	api.Use(middleware.Authenticate(cfg.Secret()))
	approvalHandler.RegisterRoutes(api)
	approverHandler.RegisterRoutes(api)
	chainHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	logger.Infof("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
