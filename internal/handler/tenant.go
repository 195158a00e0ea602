package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/walterfan/reminder-service/internal/model"
)

func (h *Handler) ListTenants(c echo.Context) error {
	tenants, err := h.tenantSvc.ListTenants(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenants)
}

func (h *Handler) GetTenant(c echo.Context) error {
	id, err := tenantID(c)
	if err != nil {
		return err
	}
	tenant, err := h.tenantSvc.GetTenant(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenant)
}

func (h *Handler) CreateTenant(c echo.Context) error {
	var tenant model.Tenant
	if err := c.Bind(&tenant); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(tenant); err != nil {
		return err
	}
	created, err := h.tenantSvc.CreateTenant(c.Request().Context(), tenant)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, created)
}

func (h *Handler) DeleteTenant(c echo.Context) error {
	id, err := tenantID(c)
	if err != nil {
		return err
	}
	if err := h.tenantSvc.DeleteTenant(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func tenantID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is invalid")
	}
	return id, nil
}
