package misc

import (
	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Body is the single response envelope of every endpoint.
type Body struct {
	Status  string            `json:"status"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, &Body{Status: StatusSuccess, Message: message, Data: data})
}

func Failure(c *gin.Context, status int, code, message string, errs map[string]string) {
	c.AbortWithStatusJSON(status, &Body{Status: StatusError, Code: code, Message: message, Errors: errs})
}
