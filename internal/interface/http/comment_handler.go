package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
)

type CommentHandler struct {
	Comments *application.CommentService
	Logger   *logrus.Logger
}

func NewCommentHandler(comments *application.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Comments: comments, Logger: logger}
}

// List returns the 50 newest comments of an offer.
func (h *CommentHandler) List(c *gin.Context) {
	offerID := c.Param("offerId")
	views, err := h.Comments.List(c.Request.Context(), offerID, application.DefaultCommentLimit)
	if err != nil {
		respondError(c, h.Logger, err, "offer with id "+offerID+" not found")
		return
	}
	out := make([]CommentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCommentResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) Create(c *gin.Context) {
	offerID := c.Param("offerId")
	dto := middleware.DTO[CreateCommentDto](c)
	view, err := h.Comments.Create(c.Request.Context(), middleware.CallerFrom(c), offerID, application.CreateCommentInput{
		Text:   dto.Text,
		Rating: dto.Rating,
	})
	if err != nil {
		respondError(c, h.Logger, err, "offer with id "+offerID+" not found")
		return
	}
	h.Logger.WithFields(logrus.Fields{"offer_id": offerID, "comment_id": view.Comment.ID}).Info("comment created")
	c.JSON(http.StatusCreated, toCommentResponse(*view))
}
