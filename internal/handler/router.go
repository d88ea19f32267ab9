package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"digikul/internal/auth"
	"digikul/internal/httpmiddleware"
	"digikul/internal/logging"
	"digikul/internal/metrics"
)

// RouterConfig tunes the middleware stack. Zero limits disable rate
// limiting.
type RouterConfig struct {
	RateLimitPerMin      int
	LoginRateLimitPerMin int
	AllowOrigins         []string
}

// NewRouter mounts every route on a fresh engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger(h.log, "/healthz", "/metrics"))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(metrics.Gin())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api",
		httpmiddleware.NewTokenBucket("api", cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware(),
		auth.Sessions(h.tokens),
	)
	{
		api.POST("/users", h.Register)
		api.POST("/users/:username/face", h.CaptureFace)
		api.GET("/students", h.ListStudents)

		login := httpmiddleware.NewTokenBucket("login", cfg.LoginRateLimitPerMin, cfg.LoginRateLimitPerMin)
		api.POST("/session", login.GinMiddleware(), h.Login)
		api.GET("/session", h.WhoAmI)
		api.DELETE("/session", h.Logout)

		api.POST("/attendance", h.MarkAttendance)
		api.GET("/attendance", h.ListAttendance)
		api.GET("/attendance/:id/photo", h.AttendancePhoto)

		api.POST("/feedback", h.SubmitFeedback)
		api.GET("/feedback", h.ListFeedback)

		api.POST("/curriculum", h.PostCurriculum)
		api.GET("/curriculum", h.ListCurriculum)

		api.GET("/resources/reference.pdf", h.ReferenceDoc)
	}
	return r
}
