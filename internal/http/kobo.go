package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/entities"
)

// KoboController implements the device-facing sync endpoints and the
// session-facing device management API. Kobo readers cannot hold sessions,
// so each device gets a URL token minted at registration time; sync routes
// live under /kobo/:token and authenticate with that token alone.
type KoboController struct {
	store  KoboStore
	covers *CoversController
}

func NewKoboController(store KoboStore, covers *CoversController) *KoboController {
	return &KoboController{
		store:  store,
		covers: covers,
	}
}

type registerDeviceRequest struct {
	DeviceName string `json:"device_name"`
}

type registerDeviceResponse struct {
	ID         uint   `json:"id"`
	DeviceName string `json:"device_name"`
	Token      string `json:"token"`
	SyncURL    string `json:"sync_url"`
}

// RegisterDevice mints a sync token for a new device.
// POST /api/kobo/devices
//
// The token is returned once; afterwards only its presence is visible.
func (controller *KoboController) RegisterDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	device, err := controller.store.RegisterKoboDevice(GetUserID(c), req.DeviceName)
	if err != nil {
		respondInternalError(c, err, "register kobo device")
		return
	}

	respondCreated(c, registerDeviceResponse{
		ID:         device.ID,
		DeviceName: device.DeviceName,
		Token:      device.Token,
		SyncURL:    "/kobo/" + device.Token + "/v1/library",
	})
}

// ListDevices returns the current user's registered devices.
// GET /api/kobo/devices
func (controller *KoboController) ListDevices(c *gin.Context) {
	devices, err := controller.store.GetKoboDevicesForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list kobo devices")
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices, "count": len(devices)})
}

// DeleteDevice revokes a device's sync token.
// DELETE /api/kobo/devices/:id
func (controller *KoboController) DeleteDevice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := controller.store.DeleteKoboDevice(id, GetUserID(c)); err != nil {
		respondNotFound(c, "device")
		return
	}

	respondSuccess(c, "device removed")
}

// authenticateDevice resolves the URL token to a device, or writes a 401.
func (controller *KoboController) authenticateDevice(c *gin.Context) (*entities.KoboDevice, bool) {
	token := c.Param("token")
	if token == "" {
		respondError(c, http.StatusUnauthorized, "device token required")
		return nil, false
	}

	device, err := controller.store.GetKoboDeviceByToken(token)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unknown device token")
		return nil, false
	}

	// Best effort, sync continues even if the timestamp update fails
	_ = controller.store.TouchKoboDevice(device.ID)

	return device, true
}

// Library returns the book list for a syncing device.
// GET /kobo/:token/v1/library
func (controller *KoboController) Library(c *gin.Context) {
	if _, ok := controller.authenticateDevice(c); !ok {
		return
	}

	limit, offset := parsePagination(c, 100, 500)

	books, total, err := controller.store.GetAllBooks(limit, offset)
	if err != nil {
		respondInternalError(c, err, "kobo library")
		return
	}

	entries := make([]gin.H, 0, len(books))
	for _, book := range books {
		entries = append(entries, gin.H{
			"uuid":      book.UUID,
			"title":     book.Title,
			"author":    book.Author,
			"format":    book.Format,
			"has_cover": book.HasCover,
			"image_url": "/kobo/" + c.Param("token") + "/v1/books/" + book.UUID + "/image",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"books":  entries,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// BookImage serves a cover image to a syncing device. Kobo appends numeric
// cache-busting suffixes to the UUID; the covers controller normalizes them.
// GET /kobo/:token/v1/books/:uuid/image
func (controller *KoboController) BookImage(c *gin.Context) {
	if _, ok := controller.authenticateDevice(c); !ok {
		return
	}

	controller.covers.GetCover(c)
}
