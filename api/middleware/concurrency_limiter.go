package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/anoixa/comic-tracker/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// retryAfterSeconds 拒绝时建议客户端的重试间隔
const retryAfterSeconds = 5

// ConcurrencyLimiter 限制同时处理的请求数，label 出现在拒绝消息中
type ConcurrencyLimiter struct {
	label    string
	sem      *semaphore.Weighted
	inFlight atomic.Int64
}

// NewConcurrencyLimiter 并发限制器，label 描述被限制的请求，例如 "strip uploads"
func NewConcurrencyLimiter(label string, maxConcurrency int64) *ConcurrencyLimiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if label == "" {
		label = "requests"
	}
	return &ConcurrencyLimiter{
		label: label,
		sem:   semaphore.NewWeighted(maxConcurrency),
	}
}

// InFlight 当前正在处理的请求数
func (cl *ConcurrencyLimiter) InFlight() int64 {
	return cl.inFlight.Load()
}

func (cl *ConcurrencyLimiter) reject(c *gin.Context, message string) {
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	common.RespondErrorAbort(c, http.StatusServiceUnavailable, message)
}

func (cl *ConcurrencyLimiter) serve(c *gin.Context) {
	cl.inFlight.Add(1)
	defer func() {
		cl.inFlight.Add(-1)
		cl.sem.Release(1)
	}()
	c.Next()
}

// Middleware 没有空位时立即拒绝
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			cl.reject(c, fmt.Sprintf("Too many %s in progress, please try again later", cl.label))
			return
		}
		cl.serve(c)
	}
}

// MiddlewareWithBlock 排队等待空位，超时或客户端断开后拒绝
func (cl *ConcurrencyLimiter) MiddlewareWithBlock(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := cl.sem.Acquire(ctx, 1); err != nil {
			cl.reject(c, fmt.Sprintf("Timed out waiting for a free slot among %s", cl.label))
			return
		}
		cl.serve(c)
	}
}
