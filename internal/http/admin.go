package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type productReq struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         decimal.Decimal    `json:"price"`
	TypeProduct   domain.ProductType `json:"type_product"`
	IsRecommended bool               `json:"is_recommended"`
	Badge         string             `json:"badge"`
	Image         string             `json:"image"`
	Ingredients   []int64            `json:"ingredients"`
}

type productPatchReq struct {
	Name          *string             `json:"name"`
	Description   *string             `json:"description"`
	Price         *decimal.Decimal    `json:"price"`
	TypeProduct   *domain.ProductType `json:"type_product"`
	IsRecommended *bool               `json:"is_recommended"`
	Badge         *string             `json:"badge"`
	Image         *string             `json:"image"`
	Ingredients   []int64             `json:"ingredients"`
}

// @Summary Products for the back-office
// @Tags admin
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 403 {object} map[string]string
// @Router /admin/products [get]
func (s *Server) adminProducts(c *gin.Context) {
	products, err := s.products.AdminProducts(c.Request.Context(), session(c).Auth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// @Summary Create product
// @Description image may carry a data: URL, it is uploaded as a file.
// @Tags admin
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /admin/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	p, err := s.products.Create(c.Request.Context(), session(c).Auth, api.ProductInput(req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Update product
// @Description ingredients replaces the attached set when present.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body productPatchReq true "Fields to change"
// @Success 200 {object} domain.Product
// @Router /admin/products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req productPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	p, err := s.products.Update(c.Request.Context(), session(c).Auth, id, api.ProductPatch(req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags admin
// @Param id path int true "Product ID"
// @Success 204
// @Failure 422 {object} map[string]string
// @Router /admin/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok, err := s.products.Delete(c.Request.Context(), session(c).Auth, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product could not be deleted"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Export products as xlsx
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/products/export [get]
func (s *Server) exportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.products.ExportProducts(c.Request.Context(), session(c).Auth, &buf); err != nil {
		s.fail(c, err)
		return
	}
	name := fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

type ingredientReq struct {
	Name      string                `json:"name"`
	Price     decimal.Decimal       `json:"price"`
	Type      domain.IngredientType `json:"type"`
	Available bool                  `json:"available"`
}

type ingredientPatchReq struct {
	Name      *string                `json:"name"`
	Price     *decimal.Decimal       `json:"price"`
	Type      *domain.IngredientType `json:"type"`
	Available *bool                  `json:"available"`
}

// @Summary Create ingredient
// @Tags admin
// @Accept json
// @Produce json
// @Param input body ingredientReq true "Ingredient"
// @Success 201 {object} domain.Ingredient
// @Router /admin/ingredients [post]
func (s *Server) createIngredient(c *gin.Context) {
	var req ingredientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	i, err := s.products.CreateIngredient(c.Request.Context(), session(c).Auth, api.IngredientInput(req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, i)
}

// @Summary Update ingredient
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Ingredient ID"
// @Param input body ingredientPatchReq true "Fields to change"
// @Success 200 {object} domain.Ingredient
// @Router /admin/ingredients/{id} [put]
func (s *Server) updateIngredient(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req ingredientPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	i, err := s.products.UpdateIngredient(c.Request.Context(), session(c).Auth, id, api.IngredientPatch(req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, i)
}

// @Summary Delete ingredient
// @Tags admin
// @Param id path int true "Ingredient ID"
// @Success 204
// @Router /admin/ingredients/{id} [delete]
func (s *Server) deleteIngredient(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok, err := s.products.DeleteIngredient(c.Request.Context(), session(c).Auth, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "ingredient could not be deleted"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {array} domain.User
// @Router /admin/users [get]
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context(), session(c).Auth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type setRoleReq struct {
	Role domain.Role `json:"role"`
}

// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body setRoleReq true "Role"
// @Success 200 {object} domain.User
// @Router /admin/users/{id}/role [put]
func (s *Server) setUserRole(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req setRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	u, err := s.users.SetRole(c.Request.Context(), session(c).Auth, id, req.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Delete a user
// @Tags admin
// @Param id path int true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.users.Delete(c.Request.Context(), session(c).Auth, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary All orders
// @Tags admin
// @Produce json
// @Success 200 {array} domain.Order
// @Router /admin/orders [get]
func (s *Server) allOrders(c *gin.Context) {
	orders, err := s.orders.AllOrders(c.Request.Context(), session(c).Auth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary Get order
// @Tags admin
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Router /admin/orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	o, err := s.orders.GetOrder(c.Request.Context(), session(c).Auth, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type setStatusReq struct {
	Status domain.OrderStatus `json:"status"`
}

// @Summary Set order status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body setStatusReq true "Status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Router /admin/orders/{id}/status [put]
func (s *Server) setOrderStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	o, err := s.orders.UpdateStatus(c.Request.Context(), session(c).Auth, id, req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
