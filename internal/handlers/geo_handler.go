package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/dto"
	"auxchat_backend/internal/services"
)

type GeoHandler struct {
	*BaseHandler
	geoService services.GeoService
}

func NewGeoHandler(base *BaseHandler, geoService services.GeoService) *GeoHandler {
	return &GeoHandler{BaseHandler: base, geoService: geoService}
}

func (h *GeoHandler) RegisterRoutes(rg *gin.RouterGroup, _ Guards) {
	rg.GET("/geo/reverse", h.Reverse)
}

func (h *GeoHandler) Reverse(c *gin.Context) {
	var query dto.GeocodeQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	response, err := h.geoService.Reverse(c.Request.Context(), *query.Lat, *query.Lon)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
