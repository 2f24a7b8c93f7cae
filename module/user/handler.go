package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"ChatRelay/logger"
	midsec "ChatRelay/middleware/security"
	"ChatRelay/module/user/model"
	"ChatRelay/service/chat"
	"ChatRelay/tools/errs"
	"ChatRelay/tools/security"
)

// Handler serves the account endpoints. It holds the relay server so
// renames reach live connections and account changes refresh presence.
type Handler struct {
	store *Store
	relay *chat.Server
	jwt   security.Options
}

func NewHandler(store *Store, relay *chat.Server, jwt security.Options) *Handler {
	return &Handler{store: store, relay: relay, jwt: jwt}
}

func (h *Handler) setToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie("token", token, 0, "/", "", true, false)
}

func (h *Handler) clearToken(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie("token", "", -1, "/", "", true, false)
}

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrBadRequest)
		return
	}
	u, token, err := register(c.Request.Context(), h.store, h.jwt, req.Username, req.Password, req.Email)
	if err != nil {
		logger.Errorf("[user] register %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	h.setToken(c, token)
	c.JSON(http.StatusCreated, gin.H{"id": u.ID.Hex()})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrBadRequest)
		return
	}
	u, token, err := login(c.Request.Context(), h.store, h.jwt, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
		return
	}
	h.setToken(c, token)
	c.JSON(http.StatusOK, gin.H{"id": u.ID.Hex(), "username": u.Username})

	// everyone gets a fresh snapshot once the login lands
	h.relay.BroadcastPresence()
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearToken(c)
	c.JSON(http.StatusOK, "ok")
}

func (h *Handler) Profile(c *gin.Context) {
	ident, ok := midsec.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrNoToken)
		return
	}
	u, err := h.store.FindByID(c.Request.Context(), ident.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       u.ID.Hex(),
		"username": u.Username,
		"email":    u.Email,
	})
}

type updateNameReq struct {
	NewUsername string `json:"newUsername" binding:"required"`
}

// UpdateName renames the account, refreshes the cookie credential, and
// tells every live connection of this user about its new name.
func (h *Handler) UpdateName(c *gin.Context) {
	ident, ok := midsec.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrNoToken)
		return
	}
	var req updateNameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrBadRequest)
		return
	}
	u, err := h.store.UpdateUsername(c.Request.Context(), ident.ID, req.NewUsername)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, errs.ErrNotFound)
			return
		}
		logger.Errorf("[user] update name %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}

	token, err := security.Generate(h.jwt, security.Identity{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		logger.Errorf("[user] re-sign token %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	h.setToken(c, token)

	n := h.relay.Registry().UpdateUsername(u.ID.Hex(), u.Username)
	logger.Infof("[user] renamed id=%s to=%s live_conns=%d", u.ID.Hex(), u.Username, n)

	c.JSON(http.StatusOK, gin.H{"id": u.ID.Hex(), "username": u.Username})
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	ident, ok := midsec.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errs.ErrNoToken)
		return
	}
	if err := h.store.Delete(c.Request.Context(), ident.ID); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, errs.ErrNotFound)
			return
		}
		logger.Errorf("[user] delete %s: %v", ident.ID, err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	h.clearToken(c)
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})

	h.relay.BroadcastPresence()
}

// Users lists every account as {_id, username}, online or not.
func (h *Handler) Users(c *gin.Context) {
	users, err := h.store.List(c.Request.Context())
	if err != nil {
		logger.Errorf("[user] list: %v", err)
		c.JSON(http.StatusInternalServerError, errs.ErrInternal)
		return
	}
	if users == nil {
		users = []model.PublicUser{} // never null in the response
	}
	c.JSON(http.StatusOK, users)
}
