package handlers

import (
	"net/http"
	"strconv"

	"indastreet/middleware"
	"indastreet/models"
	"indastreet/services/directory"
	"indastreet/services/provider"
	"indastreet/utils"

	"github.com/gin-gonic/gin"
)

// ProviderHandler exposes provider profile operations and directory queries.
type ProviderHandler struct {
	Svc       provider.ProviderService
	Directory directory.ProviderDirectory
	RadiusKm  float64
}

func NewProviderHandler(svc provider.ProviderService, dir directory.ProviderDirectory, radiusKm float64) *ProviderHandler {
	return &ProviderHandler{Svc: svc, Directory: dir, RadiusKm: radiusKm}
}

// NearbyProviders lists active providers of a type around a coordinate,
// nearest first. This is the same query the escalation engine uses.
func (h *ProviderHandler) NearbyProviders(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid coordinates", "lat and lng query params are required")
		return
	}
	providerType := models.ProviderType(c.DefaultQuery("type", string(models.ProviderTypeTherapist)))
	if !providerType.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "invalid provider type", string(providerType))
		return
	}

	radius := h.RadiusKm
	if r, err := strconv.ParseFloat(c.Query("radiusKm"), 64); err == nil && r > 0 {
		radius = r
	}

	refs, err := h.Directory.FindNearbyCandidates(c.Request.Context(), models.GeoPoint{Lat: lat, Lng: lng}, providerType, nil, radius)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to search providers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": refs})
}

// SetDeviceToken registers the caller's FCM token so the alert loop can
// reach their device.
func (h *ProviderHandler) SetDeviceToken(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	providerID := c.GetString(middleware.CtxCallerID)
	if err := h.Svc.SetFCMToken(providerID, input.Token); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to register device", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

// SetActive toggles whether the caller receives new assignments.
func (h *ProviderHandler) SetActive(c *gin.Context) {
	var input struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	providerID := c.GetString(middleware.CtxCallerID)
	if err := h.Svc.SetActive(providerID, *input.Active); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update availability", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// GetProfile returns the caller's provider profile.
func (h *ProviderHandler) GetProfile(c *gin.Context) {
	providerID := c.GetString(middleware.CtxCallerID)
	p, err := h.Svc.GetProviderByID(c.Request.Context(), providerID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "provider not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, p)
}
