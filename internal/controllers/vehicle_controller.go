package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"transroute/internal/models"
)

type VehicleController struct {
	db *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{db: db}
}

type vehicleInput struct {
	Plate     string `json:"plate" binding:"required"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity" binding:"required,gt=0"`
	InService *bool  `json:"in_service"`
}

// CreateVehicle adds a vehicle to the caller's fleet; it starts in service.
func (h *VehicleController) CreateVehicle(c *gin.Context) {
	var input vehicleInput
	if !bindJSON(c, "CreateVehicle", &input) {
		return
	}
	vehicle := models.Vehicle{
		CompanyID: companyFrom(c),
		Plate:     input.Plate,
		Name:      input.Name,
		Capacity:  input.Capacity,
		InService: true,
	}
	if input.InService != nil {
		vehicle.InService = *input.InService
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&vehicle).Error; err != nil {
		respondError(c, "CreateVehicle", dbError("create vehicle", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func (h *VehicleController) ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := h.db.WithContext(c.Request.Context()).Where("company_id = ?", companyFrom(c)).Order("plate").Find(&vehicles).Error; err != nil {
		respondError(c, "ListVehicles", dbError("list vehicles", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func (h *VehicleController) GetVehicle(c *gin.Context) {
	vehicle, ok := h.find(c, "GetVehicle")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func (h *VehicleController) UpdateVehicle(c *gin.Context) {
	var input vehicleInput
	if !bindJSON(c, "UpdateVehicle", &input) {
		return
	}
	vehicle, ok := h.find(c, "UpdateVehicle")
	if !ok {
		return
	}
	vehicle.Plate = input.Plate
	vehicle.Name = input.Name
	vehicle.Capacity = input.Capacity
	if input.InService != nil {
		vehicle.InService = *input.InService
	}
	if err := h.db.WithContext(c.Request.Context()).Save(vehicle).Error; err != nil {
		respondError(c, "UpdateVehicle", dbError("update vehicle", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func (h *VehicleController) DeleteVehicle(c *gin.Context) {
	vehicle, ok := h.find(c, "DeleteVehicle")
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(vehicle).Error; err != nil {
		respondError(c, "DeleteVehicle", dbError("delete vehicle", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}

func (h *VehicleController) find(c *gin.Context, op string) (*models.Vehicle, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var vehicle models.Vehicle
	err := h.db.WithContext(c.Request.Context()).Where("id = ? AND company_id = ?", id, companyFrom(c)).First(&vehicle).Error
	if err != nil {
		respondError(c, op, dbError("get vehicle", err))
		return nil, false
	}
	return &vehicle, true
}
