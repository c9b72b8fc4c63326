package api

import (
	"log"

	authUsecase "timesync-backend/internal/auth/usecase"
	taskDelivery "timesync-backend/internal/task/delivery"
	taskUsecasePkg "timesync-backend/internal/task/usecase"
	"timesync-backend/pkg/ai"
	"timesync-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	taskHandler     *taskDelivery.TaskHandler
	settingsHandler *SettingsHandler
	config          *config.Config
}

// NewScheduleService builds the schedule suggestion client. Ollama settings
// are read through settings so /api/settings changes apply without a
// restart.
func NewScheduleService(cfg *config.Config, settings *RuntimeSettings) *ai.ScheduleService {
	generator := ai.NewTextGenerator(ai.Config{
		Provider:       ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:   cfg.GeminiAPIKey,
		ScheduleAPIURL: cfg.ScheduleAPIURL,
		OllamaBaseURL:  settings.BaseURL,
		OllamaModel:    settings.Model,
	})
	log.Printf("AI service initialized with provider: %s (dynamic config enabled)", cfg.AIProvider)
	return ai.NewScheduleService(generator)
}

func NewHandler(authUc authUsecase.AuthUsecase, taskUc taskUsecasePkg.TaskUsecase, settings *RuntimeSettings, cfg *config.Config) *Handler {
	taskHandler := taskDelivery.NewTaskHandler(taskUc)
	log.Println("Task handler initialized")

	return &Handler{
		authUsecase:     authUc,
		taskHandler:     taskHandler,
		settingsHandler: NewSettingsHandler(settings),
		config:          cfg,
	}
}

// Router builds the engine with CORS and every route
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.taskHandler, h.settingsHandler)
	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return h.Router().Run(addr)
}
