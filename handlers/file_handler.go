package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"hrms-backend/models"
	"hrms-backend/repository"
)

// FileHandler serves files kept in GridFS.
type FileHandler struct {
	attachments repository.AttachmentStore
}

func NewFileHandler(attachments repository.AttachmentStore) *FileHandler {
	return &FileHandler{attachments: attachments}
}

// GetAttachment godoc
// @Summary Download a leave attachment
// @Description Available to the uploading employee and to reviewers.
// @Tags Leave
// @Produce application/octet-stream
// @Security BearerAuth
// @Param fileId path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/attachments/{fileId} [get]
func (h *FileHandler) GetAttachment(c *fiber.Ctx) error {
	claims, err := currentUser(c)
	if err != nil {
		return err
	}
	fileID, err := paramID(c, "fileId")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	att, err := h.attachments.Open(ctx, fileID)
	if err != nil {
		return storeError(err, "Attachment")
	}
	if !claims.HasRole(models.ReviewerRoles...) && !claims.Owns(att.Owner) {
		return fiber.NewError(fiber.StatusForbidden, "You cannot access this attachment")
	}

	contentType := att.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(att.Data)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+att.Name+`"`)
	return c.Send(att.Data)
}
