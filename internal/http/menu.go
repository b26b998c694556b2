package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
)

func priceParam(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, service.ErrInvalidInput
	}
	return &d, nil
}

// @Summary List menu
// @Tags menu
// @Produce json
// @Param q query string false "Name contains"
// @Param type query string false "pizza, drink, dessert or extra"
// @Param min_price query number false "Lower price bound"
// @Param max_price query number false "Upper price bound"
// @Param recommended query bool false "Only recommended products"
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Router /menu [get]
func (s *Server) listMenu(c *gin.Context) {
	f := repository.ProductFilter{
		NameSubstring: c.Query("q"),
		Type:          domain.ProductType(c.Query("type")),
	}
	var err error
	if f.MinPrice, err = priceParam(c, "min_price"); err != nil {
		s.fail(c, err)
		return
	}
	if f.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		s.fail(c, err)
		return
	}
	if raw := c.Query("recommended"); raw != "" {
		if f.RecommendedOnly, err = strconv.ParseBool(raw); err != nil {
			s.fail(c, service.ErrInvalidInput)
			return
		}
	}
	products, err := s.products.Menu(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// @Summary Get product with its ingredients
// @Tags menu
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /menu/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.products.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary List ingredients
// @Tags menu
// @Produce json
// @Success 200 {array} domain.Ingredient
// @Router /ingredients [get]
func (s *Server) listIngredients(c *gin.Context) {
	items, err := s.products.Ingredients(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
