package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/services"
	"github.com/mravi/bloodconnect/internal/middleware"
)

// AdminController handles admin account management and dashboard statistics
type AdminController struct {
	adminService services.AdminService
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

// Create registers another admin account
// @Summary Create an admin account
// @Tags admins
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAdminRequest true "Admin details"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Admin created"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /admins [post]
func (c *AdminController) Create(ctx *gin.Context) {
	var req dto.CreateAdminRequest
	if !bindJSON(ctx, &req) {
		return
	}

	admin, err := c.adminService.CreateAdmin(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(admin))
}

// List returns all admin accounts
// @Summary List admin accounts
// @Tags admins
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse} "Admins"
// @Router /admins [get]
func (c *AdminController) List(ctx *gin.Context) {
	admins, err := c.adminService.ListAdmins(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(admins))
}

// Update changes an admin account's details
// @Summary Update an admin account
// @Tags admins
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param request body dto.UpdateAdminRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Admin updated"
// @Failure 404 {object} dto.ErrorResponse "Admin not found"
// @Router /admins/{id} [put]
func (c *AdminController) Update(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateAdminRequest
	if !bindJSON(ctx, &req) {
		return
	}

	admin, err := c.adminService.UpdateAdmin(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(admin))
}

// Delete removes an admin account
// @Summary Delete an admin account
// @Tags admins
// @Security BearerAuth
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} dto.APIResponse "Admin deleted"
// @Failure 400 {object} dto.ErrorResponse "Cannot delete own account"
// @Failure 404 {object} dto.ErrorResponse "Admin not found"
// @Router /admins/{id} [delete]
func (c *AdminController) Delete(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}
	callerID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	if err := c.adminService.DeleteAdmin(ctx, callerID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "Admin deleted successfully"}))
}

// DashboardStats returns aggregate counters for the admin dashboard
// @Summary Get dashboard statistics
// @Tags admins
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStats} "Dashboard statistics"
// @Router /admins/dashboard [get]
func (c *AdminController) DashboardStats(ctx *gin.Context) {
	stats, err := c.adminService.DashboardStats(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// BloodGroupStats returns per-blood-group request and donor availability counts
// @Summary Get blood group statistics
// @Tags admins
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.BloodGroupStats} "Blood group statistics"
// @Router /admins/blood-groups [get]
func (c *AdminController) BloodGroupStats(ctx *gin.Context) {
	stats, err := c.adminService.BloodGroupStats(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}
