package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"transroute/internal/models"
)

const maxLedgerRows = 500

// LedgerController exposes the read-only money and audit trails written by
// the reservation procedures and actions.
type LedgerController struct {
	db *gorm.DB
}

func NewLedgerController(db *gorm.DB) *LedgerController {
	return &LedgerController{db: db}
}

// ListTransactions accepts reservation_id and user_id filters.
func (h *LedgerController) ListTransactions(c *gin.Context) {
	tx := h.db.WithContext(c.Request.Context()).Where("company_id = ?", companyFrom(c))
	for _, col := range []string{"reservation_id", "user_id"} {
		v, err := queryUint(c, col)
		if err != nil {
			respondError(c, "ListTransactions", err)
			return
		}
		if v != nil {
			tx = tx.Where(col+" = ?", *v)
		}
	}

	var transactions []models.Transaction
	if err := tx.Order("created_at DESC").Limit(maxLedgerRows).Find(&transactions).Error; err != nil {
		respondError(c, "ListTransactions", dbError("list transactions", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

// ListAuditLogs accepts entity_type and entity_id filters.
func (h *LedgerController) ListAuditLogs(c *gin.Context) {
	tx := h.db.WithContext(c.Request.Context()).Where("company_id = ?", companyFrom(c))
	if et := c.Query("entity_type"); et != "" {
		tx = tx.Where("entity_type = ?", et)
	}
	entityID, err := queryUint(c, "entity_id")
	if err != nil {
		respondError(c, "ListAuditLogs", err)
		return
	}
	if entityID != nil {
		tx = tx.Where("entity_id = ?", *entityID)
	}

	var logs []models.AuditLog
	if err := tx.Order("created_at DESC").Limit(maxLedgerRows).Find(&logs).Error; err != nil {
		respondError(c, "ListAuditLogs", dbError("list audit logs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
