package api

import (
	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/api/handler"
	"github.com/shoplead/shoplead_server/internal/api/middleware"
)

type Router struct {
	ingestHandler     *handler.IngestHandler
	workCenterHandler *handler.WorkCenterHandler
	jobHandler        *handler.JobHandler
	ncrHandler        *handler.NCRHandler
	workLogHandler    *handler.WorkLogHandler
	websocketHandler  *handler.WebSocketHandler
	cfg               *config.Config
}

func NewRouter(
	ingestHandler *handler.IngestHandler,
	workCenterHandler *handler.WorkCenterHandler,
	jobHandler *handler.JobHandler,
	ncrHandler *handler.NCRHandler,
	workLogHandler *handler.WorkLogHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		ingestHandler:     ingestHandler,
		workCenterHandler: workCenterHandler,
		jobHandler:        jobHandler,
		ncrHandler:        ncrHandler,
		workLogHandler:    workLogHandler,
		websocketHandler:  websocketHandler,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if r.cfg.Server.Mode != "release" {
		engine.Use(gin.Logger())
	}
	engine.Use(middleware.CORS(r.cfg.CORS))
	engine.MaxMultipartMemory = r.cfg.Upload.MaxSize

	api := engine.Group("/api/v1")
	{
		api.GET("/ws", r.websocketHandler.Handle)

		// 只读查询
		api.GET("/work_centers", r.workCenterHandler.Summary)
		api.GET("/work_centers/:name/forecast", r.workCenterHandler.Forecast)
		api.GET("/forecast", r.workCenterHandler.ForecastAll)

		api.GET("/jobs", r.jobHandler.List)
		api.GET("/jobs/:number", r.jobHandler.Get)
		api.GET("/schedule", r.jobHandler.ListSchedule)

		api.GET("/ncrs", r.ncrHandler.List)
		api.GET("/ncrs/monitor", r.ncrHandler.Monitor)
		api.GET("/ncrs/:number", r.ncrHandler.Get)

		api.GET("/imports", r.ingestHandler.ListRuns)
		api.GET("/imports/:id", r.ingestHandler.GetRun)
		api.GET("/worklogs", r.workLogHandler.List)

		// 写接口需要操作员令牌
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.POST("/upload", r.ingestHandler.Upload)
			authenticated.POST("/imports", r.ingestHandler.Enqueue)
			authenticated.POST("/schedule", r.jobHandler.SetSchedule)
			authenticated.POST("/ncrs", r.ncrHandler.Submit)
			authenticated.PUT("/ncrs/:number", r.ncrHandler.UpdateReport)
			authenticated.POST("/worklogs/upload", r.workLogHandler.Upload)
		}
	}

	return engine
}
