package bizerror

import (
	"fmt"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ParamID parses the named path parameter as an id, a malformed value aborts the request with 400.
func ParamID(c *gin.Context, name string) types.ID {
	raw := c.Param(name)
	id, err := types.ParseID(raw)
	if err != nil {
		panic(&ErrBadParam{Cause: fmt.Errorf("invalid id '%s'", raw)})
	}
	return id
}

func MustBindJSON(c *gin.Context, obj interface{}) {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		panic(Binding(err))
	}
}

func MustBindQuery(c *gin.Context, obj interface{}) {
	if err := c.ShouldBindWith(obj, binding.Query); err != nil {
		panic(Binding(err))
	}
}

// RejectBlank reports the fields of a partial update which are present but blank.
func RejectBlank(fields map[string]*string) error {
	errs := map[string]string{}
	for name, value := range fields {
		if value != nil && strings.TrimSpace(*value) == "" {
			errs[name] = fmt.Sprintf("The %s field is required.", name)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
