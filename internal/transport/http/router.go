package http

import "github.com/gin-gonic/gin"

func NewRouter(api *API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", api.handleHealth)
	r.POST("/poll", api.handlePoll)
	r.POST("/webhook", api.handleWebhook)

	return r
}
