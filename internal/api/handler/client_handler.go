package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/teranga/client-registry/internal/core/ports"
)

// ClientHandler handles HTTP requests for client registry operations.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Create handles POST /v1/clients. The response is sent as soon as the
// client (and optional user) transaction commits; QR mail and image upload
// run asynchronously and never affect this status code.
func (h *ClientHandler) Create(c echo.Context) error {
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return respondFailure(c, http.StatusBadRequest, "invalid payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.service.Create(c.Request().Context(), toCreateInput(req)); err != nil {
		return err
	}

	message := "client created successfully"
	if req.Users != nil {
		message = "client and user created successfully"
	}
	return respondSuccess(c, http.StatusCreated, message, nil)
}

// List handles GET /v1/clients with optional filters, sorting, and
// pagination (fixed page size).
func (h *ClientHandler) List(c echo.Context) error {
	input := ports.ListClientsInput{
		Surnom:    c.QueryParam("surnom"),
		Adresse:   c.QueryParam("adresse"),
		Telephone: c.QueryParam("telephone"),
		Page:      pageParam(c),
	}

	var ok bool
	if input.HasAccount, ok = ouiNonParam(c, "comptes"); !ok {
		return respondFailure(c, http.StatusBadRequest,
			`invalid value for "comptes", use "oui" or "non"`, nil)
	}
	if input.Active, ok = ouiNonParam(c, "active"); !ok {
		return respondFailure(c, http.StatusBadRequest,
			`invalid value for "active", use "oui" or "non"`, nil)
	}

	// Sorting applies only to the known columns, anything else is ignored.
	switch sortBy := c.QueryParam("sort_by"); sortBy {
	case "surnom", "adresse", "telephone":
		input.SortBy = sortBy
		input.SortDesc = c.QueryParam("sort_order") == "desc"
	}

	result, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}
	if result.Total == 0 {
		return respondFailure(c, http.StatusNotFound, "no clients found", nil)
	}
	return respondSuccess(c, http.StatusOK, "clients retrieved successfully", toListData(result))
}

// Get handles GET /v1/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	found, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondSuccess(c, http.StatusOK, "client retrieved successfully", toClientResponse(*found))
}

// Update handles PUT /v1/clients/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return respondFailure(c, http.StatusBadRequest, "invalid payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Surnom, req.Adresse, req.Telephone)
	if err != nil {
		return err
	}
	return respondSuccess(c, http.StatusOK, "client updated successfully",
		toClientResponse(ports.ClientWithUser{Client: *client}))
}

// Delete handles DELETE /v1/clients/:id.
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respondSuccess(c, http.StatusOK, "client deleted successfully", nil)
}

// SearchByPhone handles POST /v1/clients/telephone.
func (h *ClientHandler) SearchByPhone(c echo.Context) error {
	var req searchByPhoneRequest
	if err := c.Bind(&req); err != nil {
		return respondFailure(c, http.StatusBadRequest, "invalid payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	found, err := h.service.SearchByPhone(c.Request().Context(), req.Telephone)
	if err != nil {
		return err
	}
	return respondSuccess(c, http.StatusOK, "client found", toClientResponse(*found))
}

// ListDettes handles GET /v1/clients/:id/dettes. A client without debts is a
// success with null data, distinct from a missing client (404).
func (h *ClientHandler) ListDettes(c echo.Context) error {
	result, err := h.service.ListDettes(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if len(result.Dettes) == 0 {
		return respondSuccess(c, http.StatusOK, "client found, no debts", nil)
	}
	return respondSuccess(c, http.StatusOK, "client found", toDettesData(result))
}

// GetAccount handles GET /v1/clients/:id/user.
func (h *ClientHandler) GetAccount(c echo.Context) error {
	user, err := h.service.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respondSuccess(c, http.StatusOK, "user found", toUserResponse(*user))
}

// ouiNonParam parses a tri-state oui/non query parameter. The second return
// is false when the parameter is present but carries any other value.
func ouiNonParam(c echo.Context, name string) (*bool, bool) {
	switch c.QueryParam(name) {
	case "":
		return nil, true
	case "oui":
		v := true
		return &v, true
	case "non":
		v := false
		return &v, true
	default:
		return nil, false
	}
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
