// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers) {
	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		// 剧本文档导入
		projects.POST("/:pid/document", h.Project.ImportDocument)

		// 对话与会话记录
		projects.POST("/:pid/chat", h.Chat.Chat)
		projects.GET("/:pid/transcript", h.Chat.Transcript)

		// 分镜与资产
		projects.GET("/:pid/entities", h.Storyboard.GetEntities)
		projects.GET("/:pid/shots/:mid", h.Storyboard.GetShot)
		projects.PUT("/:pid/shots/:mid/image", h.Storyboard.UpdateShotImage)
	}

	// 服务商管理
	providers := v1.Group("/providers")
	{
		providers.GET("", h.Provider.ListProviders)
		providers.POST("", h.Provider.CreateProvider)
		providers.GET("/:id", h.Provider.GetProvider)
		providers.PUT("/:id", h.Provider.UpdateProvider)
		providers.DELETE("/:id", h.Provider.DeleteProvider)
		providers.PUT("/:id/default", h.Provider.SetDefaultProvider)
	}
}
