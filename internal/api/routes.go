package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"openResume/internal/api/middleware"
	"openResume/internal/auth"
	"openResume/internal/preview"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	verifier *auth.Verifier,
	redisClient *redis.Client,
	logger *slog.Logger,
	store ObjectStore,
	internalSecret string,
	previewConf preview.Config,
) {
	resumeHandler := NewResumeHandler(db, asynqClient, store, logger)
	renderHandler := NewRenderHandler(logger, previewConf)
	wsHandler := NewWsHandler(redisClient, verifier, logger, nil)
	authMiddleware := middleware.AuthMiddleware(verifier)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)
		v1.GET("/templates", renderHandler.ListTemplates)

		renderGroup := v1.Group("/render")
		renderGroup.Use(authMiddleware)
		{
			renderGroup.POST("/preview", renderHandler.RenderPreview)
		}

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.POST("", resumeHandler.CreateResume)
			resumeGroup.GET("", resumeHandler.ListResumes)
			resumeGroup.GET("/latest", resumeHandler.GetLatestResume)
			resumeGroup.GET("/:id", resumeHandler.GetResume)
			resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
			resumeGroup.POST("/:id/export", resumeHandler.ExportResume)
			resumeGroup.GET("/:id/download-link", resumeHandler.GetDownloadLink)
		}
	}

	// 服务间调用走内部密钥，不经过用户令牌。
	internal := router.Group("/internal")
	internal.Use(middleware.InternalSecretMiddleware(internalSecret))
	{
		internal.POST("/render/preview", renderHandler.RenderPreview)
	}
}
