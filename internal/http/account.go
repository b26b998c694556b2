package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// @Summary Order history with tracking
// @Tags orders
// @Produce json
// @Success 200 {array} service.TrackedOrder
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (s *Server) myOrders(c *gin.Context) {
	orders, err := s.orders.MyOrders(c.Request.Context(), session(c).Auth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary Saved addresses
// @Tags addresses
// @Produce json
// @Success 200 {array} domain.Address
// @Router /addresses [get]
func (s *Server) listAddresses(c *gin.Context) {
	items, err := s.users.Addresses(c.Request.Context(), session(c).Auth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Save an address
// @Tags addresses
// @Accept json
// @Produce json
// @Param input body domain.AddressSnapshot true "Address"
// @Success 201 {object} domain.Address
// @Failure 400 {object} map[string]string
// @Router /addresses [post]
func (s *Server) createAddress(c *gin.Context) {
	var req domain.AddressSnapshot
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	a, err := s.users.CreateAddress(c.Request.Context(), session(c).Auth, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary Update a saved address
// @Tags addresses
// @Accept json
// @Produce json
// @Param id path int true "Address ID"
// @Param input body domain.AddressSnapshot true "Address"
// @Success 200 {object} domain.Address
// @Router /addresses/{id} [put]
func (s *Server) updateAddress(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req domain.AddressSnapshot
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	a, err := s.users.UpdateAddress(c.Request.Context(), session(c).Auth, id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary Delete a saved address
// @Tags addresses
// @Param id path int true "Address ID"
// @Success 204
// @Router /addresses/{id} [delete]
func (s *Server) deleteAddress(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.users.DeleteAddress(c.Request.Context(), session(c).Auth, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
