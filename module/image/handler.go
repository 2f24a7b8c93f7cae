package image

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"ChatRelay/logger"
	midsec "ChatRelay/middleware/security"
	"ChatRelay/module/image/model"
	"ChatRelay/tools/errs"
)

// Handler serves the gallery endpoints. Uploaded files land in dir and
// are served back by the static file route.
type Handler struct {
	store *Store
	dir   string
}

func NewHandler(store *Store, dir string) *Handler {
	return &Handler{store: store, dir: dir}
}

func (h *Handler) saveUpload(c *gin.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("file-%d%s", time.Now().UnixMilli(), filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, filepath.Join(h.dir, filename)); err != nil {
		return "", err
	}
	return filename, nil
}

// Upload stores a new gallery image for the authenticated user.
func (h *Handler) Upload(c *gin.Context) {
	ident, ok := midsec.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrNoToken)
		return
	}
	filename, err := h.saveUpload(c)
	if err != nil {
		logger.Errorf("[image] upload %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	img := &model.Image{Sender: ident.ID, Image: filename}
	if _, err := h.store.Create(c.Request.Context(), img); err != nil {
		logger.Errorf("[image] create record %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, img)
}

// Update replaces the authenticated user's existing gallery image.
func (h *Handler) Update(c *gin.Context) {
	ident, ok := midsec.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrNoToken)
		return
	}
	filename, err := h.saveUpload(c)
	if err != nil {
		logger.Errorf("[image] update upload %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	img, err := h.store.ReplaceImage(c.Request.Context(), ident.ID, filename)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, errs.ErrNotFound)
			return
		}
		logger.Errorf("[image] replace %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": img.ID.Hex(), "image": img.Image})
}

// List returns every gallery record.
func (h *Handler) List(c *gin.Context) {
	imgs, err := h.store.List(c.Request.Context())
	if err != nil {
		logger.Errorf("[image] list: %v", err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	if imgs == nil {
		imgs = []model.Image{}
	}
	c.JSON(http.StatusOK, imgs)
}
