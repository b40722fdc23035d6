package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quorumfed/aggregator/internal/api/handlers"
	"github.com/quorumfed/aggregator/internal/api/middleware"
	v1 "github.com/quorumfed/aggregator/internal/api/v1"
)

func init() {
	// Set Gin to release mode to disable debug logging
	gin.SetMode(gin.ReleaseMode)
}

type Router struct {
	engine   *gin.Engine
	endpoint string
}

func NewRouter(trainerHandler *handlers.TrainerHandler, aggregationHandler *handlers.AggregationHandler, modelHandler *handlers.ModelHandler, endpoint string) *Router {
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.Logging())

	r := &Router{
		engine:   engine,
		endpoint: endpoint,
	}

	r.registerRoutes(trainerHandler, aggregationHandler, modelHandler)
	return r
}

func (r *Router) registerRoutes(trainerHandler *handlers.TrainerHandler, aggregationHandler *handlers.AggregationHandler, modelHandler *handlers.ModelHandler) {
	api := r.engine.Group(r.endpoint)
	v1.RegisterRoutes(api, trainerHandler, aggregationHandler, modelHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}
