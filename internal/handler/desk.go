package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/service"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	auth service.Authenticator
	log  zerolog.Logger
}

func NewAuthHandler(auth service.Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "username and password are required")
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type DeskHandler struct {
	svc service.DeskServicer
	log zerolog.Logger
}

func NewDeskHandler(svc service.DeskServicer, log zerolog.Logger) *DeskHandler {
	return &DeskHandler{svc: svc, log: log}
}

func (h *DeskHandler) ListWorkstations(c *gin.Context) {
	items, err := h.svc.ListWorkstations(c.Request.Context())
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *DeskHandler) GetWorkstation(c *gin.Context) {
	w, err := h.svc.GetWorkstation(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *DeskHandler) CreateWorkstation(c *gin.Context) {
	var req model.WorkstationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid body: inventory_number and name are required")
		return
	}
	w, err := h.svc.CreateWorkstation(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "workstation created", "arm": w})
}

func (h *DeskHandler) UpdateWorkstation(c *gin.Context) {
	var req model.WorkstationPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	w, err := h.svc.UpdateWorkstation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "workstation updated", "arm": w})
}

func (h *DeskHandler) DeleteWorkstation(c *gin.Context) {
	if err := h.svc.DeleteWorkstation(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "workstation deleted"})
}

func (h *DeskHandler) ListTickets(c *gin.Context) {
	items, err := h.svc.ListTickets(c.Request.Context(), identity(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *DeskHandler) CreateTicket(c *gin.Context) {
	var req model.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid body: arm_id, problem_type and priority are required")
		return
	}
	t, err := h.svc.CreateTicket(c.Request.Context(), identity(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "ticket created", "ticket": t})
}

type ticketStatusRequest struct {
	Status model.TicketStatus `json:"status" binding:"required"`
}

func (h *DeskHandler) UpdateTicketStatus(c *gin.Context) {
	var req ticketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid body: status is required")
		return
	}
	t, err := h.svc.UpdateTicketStatus(c.Request.Context(), identity(c), c.Param("id"), req.Status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ticket status updated", "ticket": t})
}

func (h *DeskHandler) Stats(c *gin.Context) {
	who := identity(c)
	st, err := h.svc.Stats(c.Request.Context(), who)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if !who.IsAdmin {
		c.JSON(http.StatusOK, st.Mine())
		return
	}
	c.JSON(http.StatusOK, st)
}
