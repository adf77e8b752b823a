package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"transroute/internal/models"
)

const invitationTTL = 7 * 24 * time.Hour

type InvitationController struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvitationController(db *gorm.DB) *InvitationController {
	return &InvitationController{db: db, now: time.Now}
}

// Invitation tokens are "<id>.<secret>"; only a bcrypt hash of the secret
// is stored.
func splitInvitationToken(token string) (uint, string, bool) {
	idPart, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return 0, "", false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	return uint(id), secret, true
}

func hashInvitationSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(b), err
}

// CreateInvitation issues an invitation; the token is only returned once.
func (h *InvitationController) CreateInvitation(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required,oneof=admin operator driver"`
	}
	if !bindJSON(c, "CreateInvitation", &input) {
		return
	}

	secret := uuid.NewString()
	hash, err := hashInvitationSecret(secret)
	if err != nil {
		logrus.WithError(err).Error("CreateInvitation: could not hash token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create invitation"})
		return
	}

	inv := models.Invitation{
		CompanyID: companyFrom(c),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      input.Role,
		TokenHash: hash,
		ExpiresAt: h.now().Add(invitationTTL),
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&inv).Error; err != nil {
		respondError(c, "CreateInvitation", dbError("create invitation", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"invitation": inv,
		"token":      fmt.Sprintf("%d.%s", inv.ID, secret),
	})
}

// ValidateInvitation is public: it tells an invitee whether their token is
// still usable.
func (h *InvitationController) ValidateInvitation(c *gin.Context) {
	id, secret, ok := splitInvitationToken(c.Param("token"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed invitation token"})
		return
	}

	var inv models.Invitation
	if err := h.db.WithContext(c.Request.Context()).First(&inv, id).Error; err != nil {
		respondError(c, "ValidateInvitation", dbError("get invitation", err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(inv.TokenHash), []byte(secret)) != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		return
	}

	switch {
	case inv.AcceptedAt != nil:
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "already accepted"})
	case h.now().After(inv.ExpiresAt):
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "expired"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"valid":      true,
			"email":      inv.Email,
			"role":       inv.Role,
			"company_id": inv.CompanyID,
			"expires_at": inv.ExpiresAt,
		})
	}
}
