package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"filevault/internal/common"
	"filevault/internal/server/models"
)

// respondError maps the error taxonomy onto transport statuses. Not-found
// stays not-found even for permission failures, so callers cannot probe
// for the existence of files they have no relation to. The three conflict
// classes keep their distinct messages. No-changes is success-shaped.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNoChanges):
		c.JSON(http.StatusOK, gin.H{"message": "No changes made."})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found."})
	case errors.Is(err, common.ErrorAlreadyShared):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "File shared with this user already."})
	case errors.Is(err, common.ErrorDeptAlreadyShared):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "File shared with this department already."})
	case errors.Is(err, common.ErrorRequestExists):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Share request already pending."})
	case errors.Is(err, common.ErrorDuplicateNameAtOwner):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "A file with the same name already exists at the owner side."})
	case errors.Is(err, common.ErrorDuplicateName):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "A file with the same name already exists."})
	default:
		// Key corruption, tampered ciphertext and missing content are
		// data faults: fatal for this request, logged, never leaked.
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error."})
	}
}

// --- listings ---

func (s *Server) showMyFiles(c *gin.Context) {
	result, err := s.listings.MyFiles(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) showSharedWithMe(c *gin.Context) {
	result, err := s.listings.SharedWithMe(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) showAllFiles(c *gin.Context) {
	result, err := s.listings.DiscoverableFiles(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) showShareRequests(c *gin.Context) {
	result, err := s.listings.PendingRequests(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) accessList(c *gin.Context) {
	result, err := s.listings.AccessList(c.Request.Context(), callerID(c), c.Param("id"), c.Param("permission"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listDepartments(c *gin.Context) {
	result, err := s.listings.DepartmentsToShare(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listUsers(c *gin.Context) {
	result, err := s.listings.UsersToShare(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- file lifecycle ---

func (s *Server) uploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing file."})
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// The declared MIME type is recorded verbatim, never sniffed.
	mime := header.Header.Get("Content-Type")
	description := c.PostForm("file_description")

	if _, err := s.files.Upload(c.Request.Context(), callerID(c), header.Filename, description, mime, data); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully."})
}

func (s *Server) downloadFile(c *gin.Context) {
	content, err := s.files.Download(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.Name))
	c.Data(http.StatusOK, content.Mime, content.Data)
}

type editFileRequest struct {
	FileName        string `json:"file_name" binding:"required"`
	FileDescription string `json:"file_description"`
}

func (s *Server) editFile(c *gin.Context) {
	var req editFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}

	err := s.files.EditMetadata(c.Request.Context(), callerID(c), c.Param("id"), req.FileName, req.FileDescription)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File metadata edited successfully."})
}

func (s *Server) deleteFile(c *gin.Context) {
	if err := s.files.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully."})
}

func (s *Server) fileEditInfo(c *gin.Context) {
	name, description, err := s.files.FileEditInfo(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_name": name, "file_description": description})
}

// --- sharing ---

type requestShareRequest struct {
	RequestedFileID       string            `json:"requested_file_id" binding:"required"`
	RequestedPermissionID models.Permission `json:"requested_permission_id" binding:"required"`
}

func (s *Server) requestShare(c *gin.Context) {
	var req requestShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}

	if _, err := s.sharing.Request(c.Request.Context(), callerID(c), req.RequestedFileID, req.RequestedPermissionID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully."})
}

func (s *Server) approveRequest(c *gin.Context) {
	if _, err := s.sharing.Approve(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		if errors.Is(err, common.ErrorAlreadyShared) {
			// The stale request has been deleted as part of the conflict.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "File shared with this user already. The request is deleted."})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request has been approved."})
}

type shareFileRequest struct {
	FileID                 string            `json:"file_id" binding:"required"`
	SharedWithDepartmentID string            `json:"shared_with_department_id" binding:"required"`
	PermissionID           models.Permission `json:"permission_id" binding:"required"`
}

func (s *Server) shareWithDepartment(c *gin.Context) {
	var req shareFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}

	if _, err := s.sharing.ShareWithDepartment(c.Request.Context(), callerID(c),
		req.FileID, req.SharedWithDepartmentID, req.PermissionID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "File shared successfully."})
}

type updateAccessRequest struct {
	SharedPermissionID models.Permission `json:"shared_permission_id" binding:"required"`
}

func (s *Server) updateAccess(c *gin.Context) {
	var req updateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}

	err := s.sharing.UpdateAccess(c.Request.Context(), callerID(c), c.Param("id"), req.SharedPermissionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User access to file updated successfully."})
}

func (s *Server) revokeAccess(c *gin.Context) {
	if err := s.sharing.Revoke(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File unshared with the user successfully."})
}
