package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/services"
	"github.com/mravi/bloodconnect/internal/middleware"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// LogsController exposes the system audit log to admins
type LogsController struct {
	logsService services.LogsService
}

// NewLogsController creates a new LogsController
func NewLogsController(logsService services.LogsService) *LogsController {
	return &LogsController{
		logsService: logsService,
	}
}

// List returns system logs with optional filters
// @Summary List system logs
// @Tags logs
// @Security BearerAuth
// @Produce json
// @Param level query string false "Log level (INFO, WARN, ERROR)"
// @Param user query string false "Filter by user email"
// @Param from query string false "From date (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "To date (RFC3339 or YYYY-MM-DD)"
// @Param search query string false "Search in message text"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "System logs"
// @Router /logs [get]
func (c *LogsController) List(ctx *gin.Context) {
	var filters dto.SystemLogFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter parameters")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	response, err := c.logsService.List(ctx, &filters, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Stats returns log counts per level
// @Summary Get system log statistics
// @Tags logs
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SystemLogStats} "Log statistics"
// @Router /logs/stats [get]
func (c *LogsController) Stats(ctx *gin.Context) {
	stats, err := c.logsService.Stats(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// Export streams the filtered logs as a JSON or CSV download
// @Summary Export system logs
// @Tags logs
// @Security BearerAuth
// @Produce json
// @Produce text/csv
// @Param format query string false "Export format: json or csv (default: json)"
// @Param level query string false "Log level (INFO, WARN, ERROR)"
// @Param user query string false "Filter by user email"
// @Param from query string false "From date (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "To date (RFC3339 or YYYY-MM-DD)"
// @Success 200 {file} file "Exported logs"
// @Failure 400 {object} dto.ErrorResponse "Unsupported format"
// @Router /logs/export [get]
func (c *LogsController) Export(ctx *gin.Context) {
	var filters dto.SystemLogFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter parameters")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	format := strings.ToLower(ctx.DefaultQuery("format", "json"))
	fileName := services.ExportFileName(format)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	var err error
	switch format {
	case "json":
		ctx.Header("Content-Type", "application/json")
		err = c.logsService.ExportJSON(ctx, &filters, ctx.Writer)
	case "csv":
		ctx.Header("Content-Type", "text/csv")
		err = c.logsService.ExportCSV(ctx, &filters, ctx.Writer)
	default:
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Format must be json or csv")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
	}
}
