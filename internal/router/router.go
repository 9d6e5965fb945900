package router

import (
	"upscoverflow/internal/config"
	"upscoverflow/internal/handlers"
	"upscoverflow/internal/identity"
	"upscoverflow/internal/metrics"
	"upscoverflow/internal/middleware"
	"upscoverflow/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionName = "upscoverflow_session"
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Directory identity.Directory
	Verifier  *identity.TokenVerifier
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// Setup builds the engine with middleware and every route registered.
func Setup(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.CORS(d.Config.Server.CORSOrigins))
	r.Use(middleware.Metrics(d.Metrics, healthPath, metricsPath))
	r.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(d.Config.Auth.SessionSecret))))
	r.Use(middleware.LoadViewer(d.Verifier))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	limit := d.Config.Paging.DefaultLimit
	listing := services.NewListingService(d.DB, d.Directory, d.Metrics, d.Logger, d.Config.Paging.MaxLimit)
	mutations := services.NewMutationService(d.DB, d.Metrics, d.Logger)

	// Handlers
	questionHandler := handlers.NewQuestionHandler(listing, mutations, limit, d.Logger)
	answerHandler := handlers.NewAnswerHandler(listing, mutations, limit, d.Logger)
	commentHandler := handlers.NewCommentHandler(listing, mutations, d.Logger)
	likeHandler := handlers.NewLikeHandler(listing, mutations, d.Logger)
	saveHandler := handlers.NewSaveHandler(mutations, d.Logger)
	aggregateHandler := handlers.NewAggregateHandler(listing, limit, d.Logger)
	healthHandler := handlers.NewHealthHandler(d.DB)

	r.GET(healthPath, healthHandler.Health)
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	auth := middleware.AuthRequired()

	// Questions
	questions := api.Group("/questions")
	{
		questions.GET("/get-all", questionHandler.GetAll)
		questions.GET("/getAllSaved", auth, questionHandler.GetAllSaved)
		questions.GET("/getById", questionHandler.GetByID)
		questions.POST("/create", auth, questionHandler.Create)
		questions.PATCH("/update", auth, questionHandler.Update)
		questions.DELETE("/deleteById", auth, questionHandler.DeleteByID)
	}

	// Answers
	answers := api.Group("/answers")
	{
		answers.GET("/getAll", answerHandler.GetAll)
		answers.POST("/create", auth, answerHandler.Create)
		answers.DELETE("/deleteById", auth, answerHandler.DeleteByID)
	}

	// Comments
	comments := api.Group("/comments")
	{
		comments.GET("/getAll", commentHandler.GetAll)
		comments.POST("/create", auth, commentHandler.Create)
		comments.DELETE("/deleteById", auth, commentHandler.DeleteByID)
	}

	// Likes and dislikes
	likes := api.Group("/likes")
	{
		likes.GET("/get", likeHandler.Get)
		likes.PUT("/toggleLike", auth, likeHandler.ToggleLike)
		likes.DELETE("/deleteLike", auth, likeHandler.DeleteLike)
	}

	api.PUT("/saves/toggleSave", auth, saveHandler.ToggleSave)

	// Aggregate listings
	api.GET("/subjects/getAll", aggregateHandler.Subjects)
	api.GET("/tags/getAll", aggregateHandler.Tags)
	api.GET("/users/getAll", aggregateHandler.Users)
}
