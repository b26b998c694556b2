package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service"
)

type addItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// @Summary Current cart and checkout state
// @Tags cart
// @Produce json
// @Success 200 {object} checkout.View
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).Checkout.View())
}

// @Summary Add a product to the cart
// @Description Adding a product already in the cart raises its quantity.
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addItemReq true "Product and quantity (default 1)"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /cart/items [post]
func (s *Server) addItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if req.ProductID <= 0 {
		s.fail(c, service.ErrInvalidInput)
		return
	}
	p, err := s.products.Lookup(c.Request.Context(), req.ProductID)
	if err != nil {
		s.fail(c, err)
		return
	}
	store := session(c).Checkout.Cart()
	st := store.AddItem(*p)
	if req.Quantity > 1 {
		line, _ := st.Line(p.ID)
		store.UpdateQuantity(p.ID, line.Quantity+req.Quantity-1)
	}
	c.JSON(http.StatusOK, session(c).Checkout.View())
}

type updateItemReq struct {
	Quantity *int    `json:"quantity"`
	Note     *string `json:"note"`
}

// @Summary Set quantity or note of a cart line
// @Description A quantity of zero or less removes the line.
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body updateItemReq true "Quantity and/or note"
// @Success 200 {object} checkout.View
// @Router /cart/items/{id} [put]
func (s *Server) updateItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req updateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	store := session(c).Checkout.Cart()
	if req.Note != nil {
		store.SetNote(id, *req.Note)
	}
	if req.Quantity != nil {
		store.UpdateQuantity(id, *req.Quantity)
	}
	c.JSON(http.StatusOK, session(c).Checkout.View())
}

// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} checkout.View
// @Router /cart/items/{id} [delete]
func (s *Server) removeItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	session(c).Checkout.Cart().RemoveItem(id)
	c.JSON(http.StatusOK, session(c).Checkout.View())
}
