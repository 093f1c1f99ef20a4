package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/services"
	"github.com/mravi/bloodconnect/internal/middleware"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// RequestController handles blood request operations
type RequestController struct {
	requestService services.RequestService
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.RequestService) *RequestController {
	return &RequestController{
		requestService: requestService,
	}
}

// Create handles public blood request submission
// @Summary Submit a blood request
// @Description Accepts a public blood request. The request starts in pending status until an admin reviews it.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body dto.CreateBloodRequest true "Request data"
// @Success 201 {object} dto.APIResponse{data=models.BloodRequest} "Request created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /requests [post]
func (c *RequestController) Create(ctx *gin.Context) {
	var req dto.CreateBloodRequest
	if !bindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(request))
}

// List returns blood requests for admins
// @Summary List blood requests
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status (pending, approved, rejected, fulfilled)"
// @Param bloodGroup query string false "Filter by blood group"
// @Param urgency query string false "Filter by urgency"
// @Param search query string false "Search requestor, hospital, location or email"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Requests"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /requests [get]
func (c *RequestController) List(ctx *gin.Context) {
	var filters dto.RequestListFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter parameters")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	response, err := c.requestService.List(ctx, &filters, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetByID returns a single blood request with donor details
// @Summary Get a blood request
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.BloodRequestDetail} "Request detail"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id} [get]
func (c *RequestController) GetByID(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.requestService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// Matching returns approved requests matching the student's blood group
// @Summary List matching requests for the authenticated student
// @Description Approved, still upcoming requests with the student's blood group, together with the ids the student already opted in to.
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse "Matching requests"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /requests/matching [get]
func (c *RequestController) Matching(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	requests, optedIn, err := c.requestService.ListMatchingForStudent(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"requests":        requests,
		"optedInRequests": optedIn,
	}))
}

// MyOptIns returns the authenticated student's opt-in history
// @Summary List own opt-ins
// @Description The student's opt-ins together with the requests they belong to, newest first.
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentOptInDetail} "Opt-ins"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /requests/opt-ins [get]
func (c *RequestController) MyOptIns(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	optIns, err := c.requestService.ListOptInsForStudent(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(optIns))
}

// Approve moves a pending request to approved
// @Summary Approve a blood request
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.BloodRequest} "Approved request"
// @Failure 400 {object} dto.ErrorResponse "Request is not in pending status"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id}/approve [put]
func (c *RequestController) Approve(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	request, err := c.requestService.Approve(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// Reject moves a pending request to rejected
// @Summary Reject a blood request
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body dto.RejectRequest false "Optional rejection reason"
// @Success 200 {object} dto.APIResponse{data=models.BloodRequest} "Rejected request"
// @Failure 400 {object} dto.ErrorResponse "Request is not in pending status"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id}/reject [put]
func (c *RequestController) Reject(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RejectRequest
	if ctx.Request.ContentLength > 0 {
		if !bindJSON(ctx, &req) {
			return
		}
	}

	request, err := c.requestService.Reject(ctx, id, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// OptIn registers the authenticated student as a donor candidate
// @Summary Opt in to donate
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse "Opted in"
// @Failure 400 {object} dto.ErrorResponse "Request not approved, blood group mismatch or donor not eligible"
// @Failure 409 {object} dto.ErrorResponse "Already opted in"
// @Router /requests/{id}/opt-in [post]
func (c *RequestController) OptIn(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	if err := c.requestService.OptIn(ctx, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "Opted in successfully"}))
}

// AssignDonor selects a donor without fulfilling the request
// @Summary Assign a donor to a request
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body dto.AssignDonorRequest true "Donor to assign"
// @Success 200 {object} dto.APIResponse{data=models.BloodRequest} "Request with assigned donor"
// @Failure 400 {object} dto.ErrorResponse "Donor has not opted in or blood group mismatch"
// @Router /requests/{id}/assign-donor [put]
func (c *RequestController) AssignDonor(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AssignDonorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.AssignDonor(ctx, id, req.DonorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// Fulfill marks the request fulfilled with the chosen donor
// @Summary Fulfill a blood request
// @Description Marks the request fulfilled, assigns the donor and starts the donor's three month cooldown in one transaction.
// @Tags requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body dto.FulfillRequest true "Donor the request is fulfilled with"
// @Success 200 {object} dto.APIResponse{data=models.BloodRequest} "Fulfilled request"
// @Failure 400 {object} dto.ErrorResponse "Donor has not opted in or request not approved"
// @Router /requests/{id}/fulfill [put]
func (c *RequestController) Fulfill(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.FulfillRequest
	if !bindJSON(ctx, &req) {
		return
	}

	request, err := c.requestService.Fulfill(ctx, id, req.DonorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// CompleteDonation records the completed donation for the assigned donor
// @Summary Complete a donation (admin)
// @Description Marks the request fulfilled with its assigned donor, optionally attaching a geotagged photo as proof.
// @Tags requests
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID"
// @Param geotagPhoto formData file false "Geotagged photo"
// @Success 200 {object} dto.APIResponse{data=models.BloodRequest} "Fulfilled request"
// @Failure 400 {object} dto.ErrorResponse "No donor has been assigned to this request"
// @Router /requests/{id}/complete-donation [post]
func (c *RequestController) CompleteDonation(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	// The photo is optional
	fileHeader, err := ctx.FormFile("geotagPhoto")
	if err != nil && err != http.ErrMissingFile {
		fileHeader = nil
	}

	request, err := c.requestService.CompleteDonation(ctx, id, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(request))
}

// Delete removes a blood request
// @Summary Delete a blood request
// @Tags requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.APIResponse "Request deleted"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id} [delete]
func (c *RequestController) Delete(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.requestService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "Request deleted successfully"}))
}
