package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mravi/bloodconnect/internal/app/models"
	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/services"
	"github.com/mravi/bloodconnect/internal/middleware"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// CertificateController handles donation certificate operations
type CertificateController struct {
	certService services.CertificateService
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certService services.CertificateService) *CertificateController {
	return &CertificateController{
		certService: certService,
	}
}

// Request lets a donor ask for a certificate for a fulfilled donation
// @Summary Request a donation certificate
// @Tags certificates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RequestCertificateRequest true "Donation the certificate is for"
// @Success 201 {object} dto.APIResponse{data=models.Certificate} "Certificate requested"
// @Failure 409 {object} dto.ErrorResponse "Certificate request already exists for this donation"
// @Router /certificates/request [post]
func (c *CertificateController) Request(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.RequestCertificateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	cert, err := c.certService.RequestByDonor(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(cert))
}

// Mine returns the authenticated donor's certificates
// @Summary List own certificates
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Certificate} "Certificates"
// @Router /certificates/my [get]
func (c *CertificateController) Mine(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	certs, err := c.certService.ListByDonor(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(certs))
}

// List returns all certificates for admins
// @Summary List certificates
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status (pending, approved, generated)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Certificates"
// @Router /certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	status := ctx.Query("status")

	page, size := helpers.ParsePaginationParams(ctx)
	response, err := c.certService.List(ctx, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Approve approves a pending certificate
// @Summary Approve a certificate
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=models.Certificate} "Approved certificate"
// @Failure 400 {object} dto.ErrorResponse "Certificate is not in pending status"
// @Router /certificates/{id}/approve [put]
func (c *CertificateController) Approve(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	cert, err := c.certService.Approve(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert))
}

// Generate renders the PDF for an approved certificate
// @Summary Generate a certificate PDF
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=models.Certificate} "Generated certificate"
// @Failure 400 {object} dto.ErrorResponse "Certificate must be approved before generation"
// @Router /certificates/{id}/generate [post]
func (c *CertificateController) Generate(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	cert, err := c.certService.Generate(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert))
}

// ApproveAndGenerate approves and renders a certificate in one action
// @Summary Approve and generate a certificate
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=models.Certificate} "Generated certificate"
// @Failure 400 {object} dto.ErrorResponse "Certificate is not in pending status"
// @Router /certificates/{id}/approve-generate [post]
func (c *CertificateController) ApproveAndGenerate(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	cert, err := c.certService.ApproveAndGenerate(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert))
}

// ownerScope resolves the caller into the ownership filter the service
// expects: nil for admins, the caller's own id for students.
func ownerScope(ctx *gin.Context) (*uuid.UUID, bool) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return nil, false
	}
	if role, _ := ctx.Get("userRole"); role == string(models.RoleAdmin) {
		return nil, true
	}
	return &userID, true
}

// GetByID returns a single certificate
// @Summary Get a certificate
// @Description Students can only fetch their own certificates; admins can fetch any.
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse{data=models.Certificate} "Certificate"
// @Failure 403 {object} dto.ErrorResponse "Not the certificate owner"
// @Failure 404 {object} dto.ErrorResponse "Certificate not found"
// @Router /certificates/{id} [get]
func (c *CertificateController) GetByID(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}
	owner, ok := ownerScope(ctx)
	if !ok {
		return
	}

	cert, err := c.certService.GetByID(ctx, id, owner)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(cert))
}

// Download streams the certificate PDF
// @Summary Download a certificate PDF
// @Description Streams the rendered PDF. Students can only download their own certificates; the file is regenerated when missing on disk.
// @Tags certificates
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Certificate ID"
// @Success 200 {file} binary "Certificate PDF"
// @Failure 400 {object} dto.ErrorResponse "Certificate has not been generated yet"
// @Failure 403 {object} dto.ErrorResponse "Not the certificate owner"
// @Router /certificates/{id}/download [get]
func (c *CertificateController) Download(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}
	owner, ok := ownerScope(ctx)
	if !ok {
		return
	}

	path, fileName, err := c.certService.Download(ctx, id, owner)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.FileAttachment(path, fileName)
}

// Delete removes a certificate
// @Summary Delete a certificate
// @Description Students can only delete their own certificates; admins can delete any.
// @Tags certificates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Certificate ID"
// @Success 200 {object} dto.APIResponse "Certificate deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the certificate owner"
// @Failure 404 {object} dto.ErrorResponse "Certificate not found"
// @Router /certificates/{id} [delete]
func (c *CertificateController) Delete(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}
	owner, ok := ownerScope(ctx)
	if !ok {
		return
	}

	if err := c.certService.Delete(ctx, id, owner); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "Certificate deleted successfully"}))
}
