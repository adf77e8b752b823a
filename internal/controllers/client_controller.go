package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transroute/internal/models"
	"transroute/internal/repositories"
)

type ClientController struct {
	clients repositories.ClientRepository
}

func NewClientController(clients repositories.ClientRepository) *ClientController {
	return &ClientController{clients: clients}
}

type clientInput struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateClient rejects a phone number already registered for the company
// before inserting; the unique index covers concurrent inserts.
func (h *ClientController) CreateClient(c *gin.Context) {
	var input clientInput
	if !bindJSON(c, "CreateClient", &input) {
		return
	}
	ctx := c.Request.Context()
	companyID := companyFrom(c)
	phone := strings.TrimSpace(input.Phone)

	_, err := h.clients.FindByPhone(ctx, companyID, phone)
	switch {
	case err == nil:
		respondError(c, "CreateClient", fmt.Errorf("client with phone %s: %w", phone, repositories.ErrConflict))
		return
	case !errors.Is(err, repositories.ErrNotFound):
		respondError(c, "CreateClient", err)
		return
	}

	client := &models.Client{
		CompanyID: companyID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     phone,
		Email:     strings.TrimSpace(input.Email),
	}
	if err := h.clients.Create(ctx, client); err != nil {
		respondError(c, "CreateClient", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// ListClients searches name and phone with ?q=.
func (h *ClientController) ListClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context(), companyFrom(c), c.Query("q"))
	if err != nil {
		respondError(c, "ListClients", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": clients})
}

func (h *ClientController) GetClient(c *gin.Context) {
	client, ok := h.find(c, "GetClient")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ClientController) UpdateClient(c *gin.Context) {
	var input clientInput
	if !bindJSON(c, "UpdateClient", &input) {
		return
	}
	client, ok := h.find(c, "UpdateClient")
	if !ok {
		return
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != client.Phone {
		existing, err := h.clients.FindByPhone(c.Request.Context(), client.CompanyID, phone)
		if err == nil && existing.ID != client.ID {
			respondError(c, "UpdateClient", fmt.Errorf("client with phone %s: %w", phone, repositories.ErrConflict))
			return
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			respondError(c, "UpdateClient", err)
			return
		}
	}
	client.Name = strings.TrimSpace(input.Name)
	client.Phone = phone
	client.Email = strings.TrimSpace(input.Email)
	if err := h.clients.Update(c.Request.Context(), client); err != nil {
		respondError(c, "UpdateClient", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *ClientController) DeleteClient(c *gin.Context) {
	client, ok := h.find(c, "DeleteClient")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), client.ID); err != nil {
		respondError(c, "DeleteClient", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}

func (h *ClientController) find(c *gin.Context, op string) (*models.Client, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	client, err := h.clients.GetByID(c.Request.Context(), id)
	if err == nil && client.CompanyID != companyFrom(c) {
		err = fmt.Errorf("client %d: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		respondError(c, op, err)
		return nil, false
	}
	return client, true
}
