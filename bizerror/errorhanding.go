package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"orghub/misc"
	"orghub/persistence"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func init() {
	// report validation failures by json field name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
	}
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	var bizErr BizError
	if errors.As(genericErr, &bizErr) {
		logrus.Info(err)
		respond := bizErr.Respond()
		misc.Failure(c, respond.Status, respond.Code, respond.Message, respond.Errors)
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(genericErr, &validationErrs) {
		logrus.Info(err)
		misc.Failure(c, http.StatusUnprocessableEntity, "common.validation_failed", "Validation failed",
			TranslateValidationErrors(validationErrs))
		return
	}

	// bad request:  io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		misc.Failure(c, http.StatusBadRequest, "common.body_not_found", "body not found", nil)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(genericErr, &syntaxErr) || errors.As(genericErr, &typeErr) {
		misc.Failure(c, http.StatusBadRequest, "common.invalid_body_format", "invalid body format", nil)
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		misc.Failure(c, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated", nil)
		return
	}

	if errors.Is(genericErr, ErrForbidden) {
		misc.Failure(c, http.StatusForbidden, "security.forbidden", ForbiddenMessage, nil)
		return
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		misc.Failure(c, http.StatusNotFound, "common.record_not_found", "record not found", nil)
		return
	}

	if persistence.IsUniqueViolation(genericErr) {
		logrus.Warn(err)
		misc.Failure(c, http.StatusUnprocessableEntity, "common.validation_failed", "Validation failed",
			map[string]string{"unique": "a record with the same value already exists"})
		return
	}

	logrus.WithField("path", c.Request.URL.Path).Error(err)
	misc.Failure(c, http.StatusInternalServerError, "common.internal_server_error", "internal server error", nil)
}

// TranslateValidationErrors turns validator errors into a field -> message map.
func TranslateValidationErrors(errs validator.ValidationErrors) map[string]string {
	result := map[string]string{}
	for _, fe := range errs {
		field := fe.Field()
		if _, found := result[field]; found {
			continue
		}
		result[field] = validationMessage(field, fe)
	}
	return result
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid, expecting one of [%s].", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("The %s does not match the format %s.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid (%s).", field, fe.Tag())
	}
}
