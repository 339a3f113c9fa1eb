package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
	"github.com/oksasatya/six-cities-api/pkg/response"
)

type OfferHandler struct {
	Offers *application.OfferService
	Logger *logrus.Logger
}

func NewOfferHandler(offers *application.OfferService, logger *logrus.Logger) *OfferHandler {
	return &OfferHandler{Offers: offers, Logger: logger}
}

func (h *OfferHandler) notFound(c *gin.Context) string {
	return "offer with id " + c.Param("offerId") + " not found"
}

// limitParam reads ?limit, returning def when absent.
func limitParam(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		response.Abort(c, http.StatusBadRequest, "limit must be a positive integer", nil)
		return 0, false
	}
	return n, true
}

// render writes a full offer with its host expanded.
func (h *OfferHandler) render(c *gin.Context, status int, o *entity.Offer) {
	host, err := h.Offers.Host(c.Request.Context(), o)
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(status, toOfferResponse(o, host))
}

func (h *OfferHandler) List(c *gin.Context) {
	limit, ok := limitParam(c, application.DefaultOfferLimit)
	if !ok {
		return
	}
	h.Logger.WithField("limit", limit).Debug("list offers")
	offers, err := h.Offers.List(c.Request.Context(), middleware.CallerFrom(c), limit)
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusOK, toOfferShorts(offers))
}

func (h *OfferHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Abort(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	limit, ok := limitParam(c, application.DefaultSearchLimit)
	if !ok {
		return
	}
	offers, err := h.Offers.Search(c.Request.Context(), middleware.CallerFrom(c), q, limit)
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusOK, toOfferShorts(offers))
}

func (h *OfferHandler) Create(c *gin.Context) {
	dto := middleware.DTO[CreateOfferDto](c)
	o, err := h.Offers.Create(c.Request.Context(), middleware.CallerFrom(c), dto.ToEntity())
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	h.Logger.WithFields(logrus.Fields{"offer_id": o.ID, "author_id": o.AuthorID}).Info("offer created")
	h.render(c, http.StatusCreated, o)
}

func (h *OfferHandler) Get(c *gin.Context) {
	o, host, err := h.Offers.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("offerId"))
	if err != nil {
		respondError(c, h.Logger, err, h.notFound(c))
		return
	}
	c.JSON(http.StatusOK, toOfferResponse(o, host))
}

func (h *OfferHandler) Update(c *gin.Context) {
	dto := middleware.DTO[UpdateOfferDto](c)
	o, err := h.Offers.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("offerId"), dto.ToPatch())
	if err != nil {
		respondError(c, h.Logger, err, h.notFound(c))
		return
	}
	h.render(c, http.StatusOK, o)
}

func (h *OfferHandler) Delete(c *gin.Context) {
	id := c.Param("offerId")
	if err := h.Offers.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, h.Logger, err, h.notFound(c))
		return
	}
	h.Logger.WithField("offer_id", id).Info("offer deleted")
	c.Status(http.StatusNoContent)
}

// Premium lists premium offers of a city; pro accounts only.
func (h *OfferHandler) Premium(c *gin.Context) {
	offers, err := h.Offers.Premium(c.Request.Context(), middleware.CallerFrom(c), c.Param("city"))
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusOK, toOfferShorts(offers))
}

func (h *OfferHandler) UploadPreviewImage(c *gin.Context) {
	o, err := h.Offers.SetPreviewImage(c.Request.Context(), middleware.CallerFrom(c), c.Param("offerId"), middleware.UploadedURL(c))
	if err != nil {
		respondError(c, h.Logger, err, h.notFound(c))
		return
	}
	h.render(c, http.StatusOK, o)
}

func (h *OfferHandler) UploadPhoto(c *gin.Context) {
	o, err := h.Offers.AddPhoto(c.Request.Context(), middleware.CallerFrom(c), c.Param("offerId"), middleware.UploadedURL(c))
	if err != nil {
		respondError(c, h.Logger, err, h.notFound(c))
		return
	}
	h.render(c, http.StatusOK, o)
}

func (h *OfferHandler) Favorites(c *gin.Context) {
	offers, err := h.Offers.Favorites(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusOK, toOfferShorts(offers))
}

func (h *OfferHandler) AddFavorite(c *gin.Context)    { h.setFavorite(c, true) }
func (h *OfferHandler) RemoveFavorite(c *gin.Context) { h.setFavorite(c, false) }

func (h *OfferHandler) setFavorite(c *gin.Context, favorite bool) {
	o, err := h.Offers.SetFavorite(c.Request.Context(), middleware.CallerFrom(c), c.Param("offerId"), favorite)
	if err != nil {
		respondError(c, h.Logger, err, h.notFound(c))
		return
	}
	h.render(c, http.StatusOK, o)
}
