package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/subjects", handler.CreateSubject)
		api.GET("/subjects/:id", handler.GetSubject)
		api.PUT("/subjects/:id", handler.UpdateSubject)
		api.GET("/subjects/:id/arv", handler.GetEstimate)
		api.GET("/subjects/:id/comps", handler.GetComps)
		api.POST("/subjects/:id/comps", handler.AddComp)
		api.POST("/subjects/:id/extract-comp", handler.ExtractComp)
		api.POST("/extract-subject", handler.ExtractSubject)
		api.PUT("/comps/:id", handler.UpdateComp)
		api.DELETE("/comps/:id", handler.DeleteComp)
		api.GET("/comps/:id/breakdown", handler.GetBreakdown)
		api.POST("/comps/:id/photos", handler.AddPhoto)
		api.DELETE("/photos/:id", handler.DeletePhoto)
		api.POST("/update-coordinates", handler.UpdateCoordinates)
		api.GET("/telegram/config", handler.GetTelegramConfig)
		api.POST("/telegram/config", handler.UpdateTelegramConfig)
		api.POST("/telegram/test", handler.TestTelegramConfig)
	}
}
