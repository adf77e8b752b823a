package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transroute/internal/services"
)

type TemplateController struct {
	templates *services.TemplateService
}

func NewTemplateController(templates *services.TemplateService) *TemplateController {
	return &TemplateController{templates: templates}
}

func (h *TemplateController) CreateTemplate(c *gin.Context) {
	var input services.TemplateInput
	if !bindJSON(c, "CreateTemplate", &input) {
		return
	}
	tpl, err := h.templates.Create(c.Request.Context(), companyFrom(c), input)
	if err != nil {
		respondError(c, "CreateTemplate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route_template": tpl})
}

// ListTemplates requires ?route_id=.
func (h *TemplateController) ListTemplates(c *gin.Context) {
	routeID, err := queryUint(c, "route_id")
	if err == nil && routeID == nil {
		err = &services.ValidationError{Field: "route_id", Message: "is required"}
	}
	if err != nil {
		respondError(c, "ListTemplates", err)
		return
	}
	tpls, err := h.templates.ListByRoute(c.Request.Context(), companyFrom(c), *routeID)
	if err != nil {
		respondError(c, "ListTemplates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tpls})
}

func (h *TemplateController) GetTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templates.Get(c.Request.Context(), companyFrom(c), id)
	if err != nil {
		respondError(c, "GetTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route_template": tpl})
}

func (h *TemplateController) UpdateTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input services.TemplateUpdate
	if !bindJSON(c, "UpdateTemplate", &input) {
		return
	}
	tpl, err := h.templates.Update(c.Request.Context(), companyFrom(c), id, input)
	if err != nil {
		respondError(c, "UpdateTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route_template": tpl})
}

func (h *TemplateController) DeleteTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.templates.Delete(c.Request.Context(), companyFrom(c), id); err != nil {
		respondError(c, "DeleteTemplate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route template deleted"})
}
