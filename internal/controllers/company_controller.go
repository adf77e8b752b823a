package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"transroute/internal/models"
)

// CompanyController manages the caller's company record.
type CompanyController struct {
	db *gorm.DB
}

func NewCompanyController(db *gorm.DB) *CompanyController {
	return &CompanyController{db: db}
}

// CreateCompany registers a new company.
func (h *CompanyController) CreateCompany(c *gin.Context) {
	var input models.Company
	if !bindJSON(c, "CreateCompany", &input) {
		return
	}
	company := models.Company{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		IsActive: true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&company).Error; err != nil {
		respondError(c, "CreateCompany", dbError("create company", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// GetCompany retrieves a company; callers only see their own.
func (h *CompanyController) GetCompany(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if id != companyFrom(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}
	var company models.Company
	if err := h.db.WithContext(c.Request.Context()).Preload("Vehicles").First(&company, id).Error; err != nil {
		respondError(c, "GetCompany", dbError("get company", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// ListCompanies lists the companies visible to the caller.
func (h *CompanyController) ListCompanies(c *gin.Context) {
	var companies []models.Company
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", companyFrom(c)).Find(&companies).Error; err != nil {
		respondError(c, "ListCompanies", dbError("list companies", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": companies})
}

// UpdateCompany modifies the caller's company.
func (h *CompanyController) UpdateCompany(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Name     *string `json:"name"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Phone    *string `json:"phone"`
		Address  *string `json:"address"`
		IsActive *bool   `json:"is_active"`
	}
	if !bindJSON(c, "UpdateCompany", &input) {
		return
	}
	if id != companyFrom(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var company models.Company
	if err := db.First(&company, id).Error; err != nil {
		respondError(c, "UpdateCompany", dbError("get company", err))
		return
	}
	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.Email != nil {
		company.Email = *input.Email
	}
	if input.Phone != nil {
		company.Phone = *input.Phone
	}
	if input.Address != nil {
		company.Address = *input.Address
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}
	if err := db.Save(&company).Error; err != nil {
		respondError(c, "UpdateCompany", dbError("update company", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}
