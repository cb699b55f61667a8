package interceptor

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-arbor/arbor/pkg/httpx"
	"github.com/go-arbor/arbor/pkg/log"
)

// ExceptionInterceptor recovers panics and answers with a generic error.
func ExceptionInterceptor(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			httpx.WithRepErr(c, httpx.InternalError.Code, httpx.InternalError.Msg, errorToString(err), c.Request.URL.Path)
			c.Abort()
		}
	}()
	c.Next()
}

func errorToString(err interface{}) string {
	switch v := err.(type) {
	case httpx.ResponseErr:
		return v.Msg
	case error:
		// never leak a stack to the client
		debug.PrintStack()
		log.Errorf("panic: %v", v.Error())
		return "internal server error"
	default:
		log.Errorf("panic: %v", v)
		return "internal server error"
	}
}
