package api

import (
	"github.com/SlpAus/jeopardy-stats-backend/internal/game"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/config"
	"github.com/SlpAus/jeopardy-stats-backend/internal/stats"
	"github.com/SlpAus/jeopardy-stats-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	api := router.Group("/api")
	{
		// 账号相关的路由
		api.POST("/users", user.RegisterHandler)
		api.POST("/sessions", user.LoginHandler)
		api.POST("/password_resets", user.RequestPasswordResetHandler)
		api.PATCH("/password_resets/:token", user.ResetPasswordHandler)

		// 需要登录的路由组
		authed := api.Group("", user.RequireUser())
		{
			authed.PUT("/users/play_types", user.UpdatePlayTypesHandler)

			// 比赛记录相关的路由
			authed.POST("/games", game.SaveGameHandler)
			authed.PATCH("/games/redate", game.RedateGameHandler)
			authed.GET("/games/:date", game.GetGameHandler)
			authed.DELETE("/games/:date", game.DestroyGameHandler)

			// 统计相关的路由
			authed.GET("/stats/topics", stats.GetTopicsHandler)
			authed.GET("/stats/by_row", stats.GetByRowHandler)
			authed.GET("/stats/summary", stats.GetSummaryHandler)
		}

		// 示例数据模式：向未登录的访客开放指定账号的统计
		if cfg.Sample.Enabled {
			sample := api.Group("/sample", user.LoadSampleUser())
			{
				sample.GET("/topics", stats.GetTopicsHandler)
				sample.GET("/by_row", stats.GetByRowHandler)
				sample.GET("/summary", stats.GetSummaryHandler)
			}
		}
	}
}
