package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Checker interface {
	Degraded() bool
}

// NewHandler serves GET /healthz: 200 while the poll store is in sync,
// 503 while writes are only held in memory.
func NewHandler(checker Checker) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if checker.Degraded() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
