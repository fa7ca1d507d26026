package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/report"
)

type AdminHandler struct {
	service report.ReportUseCase
}

type systemDateRequest struct {
	Date string `json:"date" binding:"required"`
}

func NewAdminHandler(service report.ReportUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/report", h.report)
	router.GET("/system-date", h.systemDate)
	router.PUT("/system-date", h.setSystemDate)
}

func (h *AdminHandler) report(c *gin.Context) {
	r, err := h.service.Report(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *AdminHandler) systemDate(c *gin.Context) {
	d, err := h.service.SystemDate(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": d.Format(domain.DateLayout)})
}

func (h *AdminHandler) setSystemDate(c *gin.Context) {
	var req systemDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}
	res, err := h.service.SetSystemDate(c.Request.Context(), d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
