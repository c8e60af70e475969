package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/shoplead/shoplead_server/internal/pkg/response"
	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
	"github.com/shoplead/shoplead_server/internal/schema"
	"github.com/shoplead/shoplead_server/internal/service"
)

// writeImportError 导入类接口共用的错误映射
func writeImportError(c *gin.Context, err error) {
	var missing *schema.MissingColumnError
	switch {
	case errors.As(err, &missing):
		response.StructuralError(c, err.Error(), missing.Fields())
	case errors.Is(err, schema.ErrStructural):
		response.StructuralError(c, err.Error(), nil)
	case errors.Is(err, sheet.ErrUnsupportedFormat), errors.Is(err, service.ErrInvalidFormat):
		response.ParamError(c, service.ErrInvalidFormat.Error())
	case errors.Is(err, sheet.ErrUnreadable):
		response.StructuralError(c, err.Error(), nil)
	case errors.Is(err, service.ErrFileTooLarge):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrInvalidMode):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrRunNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrIngestBusy):
		response.BusyError(c, "")
	default:
		log.Printf("import failed: %v", err)
		response.ServerError(c, "导入失败")
	}
}
