package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const maxUpload = 8 << 20

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id].render())
	}
	writeJSON(w, http.StatusOK, data(out))
}

// applyProductForm copies multipart fields onto p; create requires name and price
func applyProductForm(r *http.Request, p *domain.Product, create bool) error {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	form := r.MultipartForm.Value
	get := func(k string) (string, bool) {
		v, ok := form[k]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}

	if v, ok := get("name"); ok {
		p.Name = v
	}
	if v, ok := get("description"); ok {
		p.Description = v
	}
	if v, ok := get("price"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return errors.New("The price field must be a number.")
		}
		p.Price = d
	} else if create {
		return errors.New("The price field is required.")
	}
	if v, ok := get("type_product"); ok {
		p.TypeProduct = domain.ProductType(v)
	}
	if v, ok := get("is_recommended"); ok {
		p.IsRecommended = v == "1" || strings.EqualFold(v, "true")
	}
	if v, ok := get("badge"); ok {
		p.Badge = v
	}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		p.ImageURL = "/storage/products/" + files[0].Filename
	}
	if create && p.Name == "" {
		return errors.New("The name field is required.")
	}
	return nil
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	p := domain.Product{TypeProduct: domain.ProductTypePizza}
	if err := applyProductForm(r, &p, true); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	p.ID = s.id()
	if p.ImageURL != "" {
		p.ImageURL = fmt.Sprintf("/storage/products/%d.png", p.ID)
	}
	stored := &product{Product: p}
	s.products[p.ID] = stored
	body := stored.render()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, data(body))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	s.mu.Lock()
	current, ok := s.products[id]
	var p domain.Product
	if ok {
		p = current.Product
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err := applyProductForm(r, &p, false); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	s.products[id] = &product{Product: p}
	body := s.products[id].render()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, data(body))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	delete(s.products, id)
	delete(s.pivots, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (s *Server) productIngredients(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	out := make([]map[string]any, 0)
	for _, pv := range s.pivots[id] {
		row := map[string]any{"id": pv.IngredientID, "pivot": map[string]any{"id": pv.ID, "product_id": id}}
		if ing, ok := s.ingredients[pv.IngredientID]; ok {
			row["name"] = ing.Name
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, data(out))
}

func (s *Server) attachIngredient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var req struct {
		IngredientID int64 `json:"ingredient_id"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusUnprocessableEntity, "The ingredient id field is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if _, ok := s.ingredients[req.IngredientID]; !ok {
		writeError(w, http.StatusUnprocessableEntity, "The selected ingredient id is invalid.")
		return
	}
	pivotID := s.attach(id, req.IngredientID)
	writeJSON(w, http.StatusCreated, data(map[string]any{"id": pivotID, "product_id": id, "ingredient_id": req.IngredientID}))
}

func (s *Server) detachIngredient(w http.ResponseWriter, r *http.Request) {
	id, pivotID := pathID(r, "id"), pathID(r, "pivot")
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.pivots[id]
	for i, pv := range rows {
		if pv.ID == pivotID {
			s.pivots[id] = append(rows[:i:i], rows[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Ingredient detached"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Ingredient not attached")
}

func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.ingredients))
	for id := range s.ingredients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.ingredients[id].render())
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingredients": out})
}

type ingredientReq struct {
	Name       *string      `json:"name"`
	Price      *json.Number `json:"price"`
	Ingredient *string      `json:"ingredient"`
	Available  *int         `json:"available"`
}

func (req ingredientReq) apply(i *domain.Ingredient) error {
	if req.Name != nil {
		i.Name = *req.Name
	}
	if req.Price != nil {
		d, err := decimal.NewFromString(req.Price.String())
		if err != nil {
			return errors.New("The price field must be a number.")
		}
		i.Price = d
	}
	if req.Ingredient != nil {
		i.Type = domain.IngredientType(*req.Ingredient)
	}
	if req.Available != nil {
		i.Available = *req.Available != 0
	}
	return nil
}

func (s *Server) createIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientReq
	if !decodeBody(r, &req) || req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "The name field is required.")
		return
	}
	ing := domain.Ingredient{Type: domain.IngredientExtra, Available: true}
	if err := req.apply(&ing); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	ing.ID = s.id()
	stored := &ingredient{Ingredient: ing}
	s.ingredients[ing.ID] = stored
	body := stored.render()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, data(body))
}

func (s *Server) updateIngredient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var req ingredientReq
	if !decodeBody(r, &req) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.ingredients[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Ingredient not found")
		return
	}
	ing := stored.Ingredient
	if err := req.apply(&ing); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	stored.Ingredient = ing
	writeJSON(w, http.StatusOK, data(stored.render()))
}

func (s *Server) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ingredients[id]; !ok {
		writeError(w, http.StatusNotFound, "Ingredient not found")
		return
	}
	delete(s.ingredients, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ingredient deleted"})
}
