package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type createOrderReq struct {
	AddressID *int64                  `json:"address_id"`
	Address   *domain.AddressSnapshot `json:"address"`
	Items     []struct {
		ProductID int64 `json:"product_id"`
		Quantity  *int  `json:"quantity"`
	} `json:"items"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if !decodeBody(r, &req) || len(req.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "The items field is required.")
		return
	}
	user := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	var addr domain.AddressSnapshot
	switch {
	case req.AddressID != nil:
		saved, ok := s.addresses[*req.AddressID]
		if !ok || saved.UserID != user.ID {
			writeError(w, http.StatusUnprocessableEntity, "The selected address id is invalid.")
			return
		}
		addr = domain.AddressSnapshot{AddressLine: saved.AddressLine, CityID: saved.CityID, Sector: saved.Sector, Reference: saved.Reference}
	case req.Address != nil:
		addr = *req.Address
	}
	if addr.AddressLine == "" || !s.cityExists(addr.CityID) {
		writeError(w, http.StatusUnprocessableEntity, "The address is invalid.")
		return
	}

	o := &order{UserID: user.ID, Status: domain.OrderStatusPending, Address: addr, CreatedAt: s.now()}
	subtotal := decimal.Zero
	for _, it := range req.Items {
		p, ok := s.products[it.ProductID]
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("The selected product %d is invalid.", it.ProductID))
			return
		}
		qty := 1
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		if qty < 1 {
			writeError(w, http.StatusUnprocessableEntity, "The quantity must be at least 1.")
			return
		}
		o.Items = append(o.Items, orderItem{ProductID: p.ID, Name: p.Name, Quantity: qty, Price: p.Price})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	o.Total = subtotal.Add(DeliveryFee)
	o.ID = s.id()
	s.orders[o.ID] = o
	writeJSON(w, http.StatusCreated, data(map[string]any{"order": o.render()}))
}

// caller holds s.mu
func (s *Server) cityExists(id int64) bool {
	for _, c := range s.cities {
		if c.ID == id {
			return true
		}
	}
	return false
}

type createPaymentReq struct {
	Amount        any     `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var req createPaymentReq
	if !decodeBody(r, &req) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid payload")
		return
	}
	amount, ok := req.Amount.(float64)
	if !ok || amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "The amount field must be a number.")
		return
	}
	method := domain.PaymentMethod(req.Method)
	if !method.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "The selected method is invalid.")
		return
	}
	if method == domain.PaymentCard && (req.TransactionID == nil || *req.TransactionID == "") {
		writeError(w, http.StatusUnprocessableEntity, "The transaction id field is required when method is card.")
		return
	}
	status := domain.PaymentStatus(req.Status)
	switch status {
	case domain.PaymentStatusPending, domain.PaymentStatusPaid, domain.PaymentStatusApproved, domain.PaymentStatusRejected:
	default:
		writeError(w, http.StatusUnprocessableEntity, "The selected status is invalid.")
		return
	}

	user := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || (o.UserID != user.ID && !user.Role.IsAdmin()) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	p := domain.Payment{
		ID:            s.id(),
		OrderID:       o.ID,
		Method:        method,
		Status:        status,
		Amount:        decimal.NewFromFloat(amount),
		TransactionID: req.TransactionID,
		CreatedAt:     s.now().UTC().Format(timeLayout),
	}
	o.Payments = append(o.Payments, p)
	if status == domain.PaymentStatusPaid || status == domain.PaymentStatusApproved {
		o.Status = domain.OrderStatusPaid
	}
	writeJSON(w, http.StatusCreated, data(renderPayment(p)))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	if all && !user.Role.IsAdmin() {
		writeError(w, http.StatusForbidden, "This action is unauthorized.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*order, 0)
	for _, o := range s.orders {
		if all || o.UserID == user.ID {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	out := make([]map[string]any, 0, len(list))
	for _, o := range list {
		out = append(out, o.render())
	}
	writeJSON(w, http.StatusOK, data(map[string]any{"orders": out}))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	user := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || (o.UserID != user.ID && !user.Role.IsAdmin()) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, data(o.render()))
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if !decodeBody(r, &req) || !req.Status.Assignable() {
		writeError(w, http.StatusUnprocessableEntity, "The selected status is invalid.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	o.Status = req.Status
	writeJSON(w, http.StatusOK, data(o.render()))
}
