package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/service"
)

// @Summary Merge fields into the delivery address
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body domain.AddressPatch true "Address fields"
// @Success 200 {object} checkout.View
// @Router /checkout/address [patch]
func (s *Server) setAddress(c *gin.Context) {
	var req domain.AddressPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	co := session(c).Checkout
	co.Cart().SetAddress(req)
	c.JSON(http.StatusOK, co.View())
}

// @Summary Merge fields into the card details
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body domain.PaymentPatch true "Card fields"
// @Success 200 {object} checkout.View
// @Router /checkout/payment [patch]
func (s *Server) setPayment(c *gin.Context) {
	var req domain.PaymentPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	co := session(c).Checkout
	co.Cart().SetPaymentDetails(req)
	c.JSON(http.StatusOK, co.View())
}

type setMethodReq struct {
	Method domain.PaymentMethod `json:"method"`
}

// @Summary Choose card or cash
// @Description Switching to cash clears the card details.
// @Tags checkout
// @Accept json
// @Produce json
// @Param input body setMethodReq true "Method"
// @Success 200 {object} checkout.View
// @Failure 400 {object} map[string]string
// @Router /checkout/method [put]
func (s *Server) setMethod(c *gin.Context) {
	var req setMethodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if !req.Method.Valid() {
		s.fail(c, service.ErrInvalidInput)
		return
	}
	co := session(c).Checkout
	co.SetPaymentMethod(req.Method)
	c.JSON(http.StatusOK, co.View())
}

// @Summary Advance one step
// @Tags checkout
// @Produce json
// @Success 200 {object} checkout.View
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /checkout/next [post]
func (s *Server) nextStep(c *gin.Context) {
	co := session(c).Checkout
	if _, err := co.Next(); err != nil {
		s.failWith(c, err, gin.H{"checkout": co.View()})
		return
	}
	c.JSON(http.StatusOK, co.View())
}

// @Summary Go back one step
// @Tags checkout
// @Produce json
// @Success 200 {object} checkout.View
// @Router /checkout/prev [post]
func (s *Server) prevStep(c *gin.Context) {
	co := session(c).Checkout
	co.Prev()
	c.JSON(http.StatusOK, co.View())
}

type commitResp struct {
	Result   *checkout.Result `json:"result"`
	Checkout checkout.View    `json:"checkout"`
	Error    string           `json:"error,omitempty"`
}

// commit writes the outcome of Submit or ResumePayment. A payment left
// pending is not a request failure: the order exists and can be resumed.
func (s *Server) commit(c *gin.Context, res *checkout.Result, err error) {
	co := session(c).Checkout
	var pending *checkout.PaymentPendingError
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, commitResp{Result: res, Checkout: co.View()})
	case errors.As(err, &pending):
		c.JSON(http.StatusAccepted, commitResp{Result: res, Checkout: co.View(), Error: err.Error()})
	default:
		s.failWith(c, err, gin.H{"result": res, "checkout": co.View()})
	}
}

// @Summary Place the order and record its payment
// @Tags checkout
// @Produce json
// @Success 201 {object} commitResp
// @Success 202 {object} commitResp "Order created, payment pending"
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /checkout/submit [post]
func (s *Server) submit(c *gin.Context) {
	res, err := session(c).Checkout.Submit(c.Request.Context())
	s.commit(c, res, err)
}

// @Summary Retry the payment of the pending order
// @Tags checkout
// @Produce json
// @Success 201 {object} commitResp
// @Success 202 {object} commitResp "Payment still pending"
// @Failure 404 {object} map[string]string
// @Router /checkout/resume-payment [post]
func (s *Server) resumePayment(c *gin.Context) {
	res, err := session(c).Checkout.ResumePayment(c.Request.Context())
	s.commit(c, res, err)
}

// @Summary Delivery cities
// @Description Loaded once per session; the fallback list is served when the API has none.
// @Tags checkout
// @Produce json
// @Success 200 {array} domain.City
// @Failure 502 {object} map[string]string
// @Router /checkout/cities [get]
func (s *Server) cities(c *gin.Context) {
	cities, err := session(c).Checkout.Cities(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// @Summary Reload delivery cities after a failure
// @Tags checkout
// @Produce json
// @Success 200 {array} domain.City
// @Failure 502 {object} map[string]string
// @Router /checkout/cities/retry [post]
func (s *Server) retryCities(c *gin.Context) {
	cities, err := session(c).Checkout.RetryCities(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// @Summary Saved addresses offered at the address step
// @Tags checkout
// @Produce json
// @Success 200 {array} domain.Address
// @Router /checkout/addresses [get]
func (s *Server) checkoutAddresses(c *gin.Context) {
	addresses, err := session(c).Checkout.LoadAddresses(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// @Summary Copy a saved address into the form
// @Tags checkout
// @Produce json
// @Param id path int true "Address ID"
// @Success 200 {object} checkout.View
// @Failure 404 {object} map[string]string
// @Router /checkout/addresses/{id}/use [post]
func (s *Server) useAddress(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	co := session(c).Checkout
	if _, err := co.UseSavedAddress(id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, co.View())
}
