package devserver

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/five82/wreath/internal/logging"
)

// Options configure the dev server router.
type Options struct {
	Logger logging.Logger
	// FailEvery makes every n-th API request answer 503, to exercise client
	// retries. Zero disables it.
	FailEvery int
	// Latency delays every API response.
	Latency time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Code: status, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Code: status, Message: message})
}

// NewRouter serves board under /api/v1.
func NewRouter(board *Board, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(opts.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handler{board: board}
	v1 := r.Group("/api/v1")
	v1.Use(faults(opts.FailEvery, opts.Latency))
	{
		v1.GET("/flowers", h.listFlowers)
		v1.POST("/flowers", h.createFlower)
		v1.GET("/leaves", h.listLeaves)
		v1.POST("/leaves", h.createLeaf)
	}
	return r
}

type handler struct {
	board *Board
}

func (h *handler) listFlowers(c *gin.Context) {
	respond(c, http.StatusOK, "ok", h.board.Flowers())
}

func (h *handler) listLeaves(c *gin.Context) {
	respond(c, http.StatusOK, "ok", h.board.Leaves())
}

func (h *handler) createFlower(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	f, err := h.board.AddFlower(body.Content)
	switch {
	case errors.Is(err, errEmptyContent):
		fail(c, http.StatusBadRequest, "Message is empty")
		return
	case errors.Is(err, errTooLong):
		fail(c, http.StatusBadRequest, "Message is too long")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, "Could not save your message")
		return
	}
	respond(c, http.StatusCreated, "Your message was added to the wreath.", f)
}

func (h *handler) createLeaf(c *gin.Context) {
	respond(c, http.StatusCreated, "Your warm thoughts were received.", h.board.AddLeaf())
}

func faults(failEvery int, latency time.Duration) gin.HandlerFunc {
	var count atomic.Int64
	return func(c *gin.Context) {
		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		n := count.Add(1)
		if failEvery > 0 && n%int64(failEvery) == 0 {
			fail(c, http.StatusServiceUnavailable, "Board is temporarily unavailable")
			return
		}
		c.Next()
	}
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
			"duration", time.Since(start),
		)
	}
}
