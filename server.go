package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/handlers"
	"github.com/Ruzakiff/wealthtogether/middlewares"
	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
)

const defaultPort = "8080"

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// customErrorLogger logs only requests that accumulated gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", handlers.RegisterUser)
	users.POST("/login", handlers.Login)
	users.GET("", handlers.ListUsers)
	users.GET("/:id", handlers.GetUser)

	couples := api.Group("/couples")
	couples.POST("", handlers.CreateCouple)
	couples.GET("/:id", handlers.GetCouple)
	couples.GET("/user/:userId", handlers.GetCouplesByUser)
	couples.GET("/:id/accounts", handlers.GetCoupleAccounts)

	accounts := api.Group("/accounts")
	accounts.POST("", handlers.CreateBankAccount)
	accounts.GET("/:id", handlers.GetBankAccount)
	accounts.GET("/user/:userId", handlers.GetUserAccounts)
	accounts.GET("/:id/transactions", handlers.GetAccountTransactions)
	accounts.POST("/transactions", handlers.CreateTransaction)

	categories := api.Group("/categories")
	categories.POST("", handlers.CreateCategory)
	categories.GET("", handlers.ListCategories)
	categories.GET("/:id", handlers.GetCategory)
	categories.GET("/:id/subcategories", handlers.GetSubcategories)

	auth := middlewares.RequireAuth()

	budgets := api.Group("/budgets")
	budgets.POST("", auth, handlers.CreateBudget)
	budgets.PUT("/:id", auth, handlers.UpdateBudget)
	budgets.GET("/:id", handlers.GetBudget)
	budgets.DELETE("/:id", auth, handlers.DeleteBudget)
	budgets.GET("/:id/spending", handlers.GetBudgetSpending)
	budgets.GET("/couple/:coupleId", handlers.GetBudgetsByCouple)
	budgets.GET("/couple/:coupleId/spending", handlers.GetCoupleBudgetSpending)

	goals := api.Group("/goals")
	goals.POST("", auth, handlers.CreateGoal)
	goals.PUT("/:id", auth, handlers.UpdateGoal)
	goals.GET("/:id", handlers.GetGoal)
	goals.GET("/couple/:coupleId", handlers.GetGoalsByCouple)
	goals.POST("/allocate", auth, handlers.AllocateToGoal)
	goals.POST("/reallocate", auth, handlers.ReallocateBetweenGoals)

	rules := api.Group("/rules")
	rules.POST("", auth, handlers.CreateAutoRule)
	rules.PUT("/:id", auth, handlers.UpdateAutoRule)
	rules.GET("/:id", handlers.GetAutoRule)
	rules.GET("/user/:userId", handlers.ListUserRules)
	rules.DELETE("/:id", auth, handlers.DeleteAutoRule)
	rules.POST("/:id/execute", auth, handlers.ExecuteRule)
	rules.POST("/execute", auth, handlers.ExecuteAccountRules)

	approvals := api.Group("/approvals")
	approvals.POST("", auth, handlers.CreateApproval)
	approvals.GET("", handlers.ListApprovals)
	approvals.GET("/:id", handlers.GetApproval)
	approvals.PUT("/:id", auth, handlers.ResolveApproval)
	approvals.GET("/settings/:coupleId", handlers.GetApprovalSettings)
	approvals.PUT("/settings/:coupleId", auth, handlers.UpdateApprovalSettings)

	ledger := api.Group("/ledger")
	ledger.GET("/user/:userId", handlers.GetUserLedgerEvents)
	ledger.GET("/couple/:coupleId", handlers.GetCoupleLedgerEvents)
	ledger.GET("/account/:accountId", handlers.GetAccountLedgerEvents)
	ledger.GET("/goal/:goalId", handlers.GetGoalLedgerEvents)
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// SIGTERM arrives on platform shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the DB is ready so the startup probe
	// passes; app endpoints answer 503 until the connection is up.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist; development allows all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true

	r.Use(cors.New(corsConfig))
	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate runs DDL that can block tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateModels(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// READ COMMITTED keeps the approval CAS from blocking on gap locks.
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api/v1")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
