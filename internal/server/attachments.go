package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	blobdomain "github.com/smallbiznis/stockroom/internal/blob/domain"
)

// Content arrives base64 inside the JSON body; encoding/json decodes
// []byte fields transparently.
type saveAttachmentRequest struct {
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
	Encoding    string `json:"encoding"`
}

func (s *Server) SaveAttachment(c *gin.Context) {
	var req saveAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.blobSvc.Save(c.Request.Context(), blobdomain.SaveRequest{
		Key:         strings.TrimSpace(c.Param("key")),
		Content:     req.Content,
		ContentType: strings.TrimSpace(req.ContentType),
		Encoding:    strings.TrimSpace(req.Encoding),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAttachment(c *gin.Context) {
	payload, err := s.blobSvc.Load(c.Request.Context(), strings.TrimSpace(c.Param("key")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	contentType := payload.Object.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, payload.Content)
}

func (s *Server) DeleteAttachment(c *gin.Context) {
	if err := s.blobSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("key"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
