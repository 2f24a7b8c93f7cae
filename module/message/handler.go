package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ChatRelay/logger"
	midsec "ChatRelay/middleware/security"
	"ChatRelay/module/message/model"
	"ChatRelay/tools/errs"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// History returns the conversation between the authenticated user and
// the user in the path, oldest first.
func (h *Handler) History(c *gin.Context) {
	ident, ok := midsec.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrNoToken)
		return
	}
	other := c.Param("id")
	msgs, err := h.store.Between(c.Request.Context(), ident.ID, other)
	if err != nil {
		logger.Errorf("[message] history %s<->%s: %v", ident.ID, other, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}
