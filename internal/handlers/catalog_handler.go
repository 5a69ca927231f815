package handlers

import (
	"net/http"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
)

// CatalogHandler handles categories, companies, employees and roles
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListCategories lists upstream categories
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Security SessionAuth
// @Success 200 {array} models.Category
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	cats, err := h.catalog.ListCategories(r.Context(), c)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cats)
}

// CreateCategory creates a category upstream
// @Summary Create category
// @Tags Catalog
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body categoryRequest true "Category name"
// @Success 201 {object} models.Category
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(r.Context(), c, req.Name)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, cat)
}

// ListCompanies lists upstream companies
// @Summary List companies
// @Tags Catalog
// @Produce json
// @Security SessionAuth
// @Success 200 {array} models.Company
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /companies [get]
func (h *CatalogHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	companies, err := h.catalog.ListCompanies(r.Context(), c)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, companies)
}

// CreateCompany creates a company and connects the given checklists to it
// @Summary Create company
// @Tags Catalog
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body service.CompanyInput true "Company"
// @Success 201 {object} models.Company
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /companies [post]
func (h *CatalogHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req service.CompanyInput
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.catalog.CreateCompany(r.Context(), c, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, company)
}

// GetCompany returns one company
// @Summary Get company
// @Tags Catalog
// @Produce json
// @Security SessionAuth
// @Param id path int true "Company ID"
// @Success 200 {object} models.Company
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /companies/{id} [get]
func (h *CatalogHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	id, err := pathInt(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	company, err := h.catalog.GetCompany(r.Context(), c, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, company)
}

// UpdateCompany edits a company and connects the given checklists to it
// @Summary Update company
// @Tags Catalog
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path int true "Company ID"
// @Param request body service.CompanyInput true "Company"
// @Success 200 {object} models.Company
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /companies/{id} [put]
func (h *CatalogHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	id, err := pathInt(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	var req service.CompanyInput
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.catalog.UpdateCompany(r.Context(), c, id, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, company)
}

// ListRoles lists the employee roles
// @Summary List roles
// @Tags Catalog
// @Produce json
// @Security SessionAuth
// @Success 200 {array} models.Role
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /roles [get]
func (h *CatalogHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	roles, err := h.catalog.ListRoles(r.Context(), c)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, roles)
}

// ListEmployees lists employees with pagination
// @Summary List employees
// @Tags Catalog
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.Page[models.Employee]
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /employees [get]
func (h *CatalogHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	page, err := queryInt(r, "page", 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	result, err := h.catalog.ListEmployees(r.Context(), c, page, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// CreateEmployee registers an employee. A taken email answers 409.
// @Summary Create employee
// @Tags Catalog
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body service.EmployeeInput true "Employee"
// @Success 201 {object} models.Employee
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Conflict"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /employees [post]
func (h *CatalogHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req service.EmployeeInput
	if !decodeJSON(w, r, &req) {
		return
	}
	emp, err := h.catalog.CreateEmployee(r.Context(), c, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, emp)
}

// RemoveEmployee deletes an employee
// @Summary Remove employee
// @Tags Catalog
// @Produce json
// @Security SessionAuth
// @Param id path string true "Employee ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /employees/{id} [delete]
func (h *CatalogHandler) RemoveEmployee(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	if err := h.catalog.RemoveEmployee(r.Context(), c, r.PathValue("id")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
