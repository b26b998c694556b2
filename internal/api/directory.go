package api

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

type cityWire struct {
	ID   Numeric `json:"id"`
	Name string  `json:"name"`
}

// ListCities GET /cities
func (c *Client) ListCities(ctx context.Context) (Envelope[domain.City], error) {
	body, err := c.doJSON(ctx, "list_cities", http.MethodGet, "/cities", nil)
	if err != nil {
		return Envelope[domain.City]{}, err
	}
	return decodeList(body, func(w cityWire) (domain.City, bool) {
		id, ok := w.ID.Int64()
		return domain.City{ID: id, Name: w.Name}, ok
	}, "data", "data.data", "data.cities", "", "cities"), nil
}

func toAddress(w addressWire) (domain.Address, bool) { return w.address(), true }

// ListAddresses GET /addresses, the saved addresses of the token's user
func (c *Client) ListAddresses(ctx context.Context) (Envelope[domain.Address], error) {
	body, err := c.doJSON(ctx, "list_addresses", http.MethodGet, "/addresses", nil)
	if err != nil {
		return Envelope[domain.Address]{}, err
	}
	return decodeList(body, toAddress, "data", ""), nil
}

func (c *Client) decodeAddress(op string, body []byte) (*domain.Address, error) {
	w, err := decodeObject[addressWire](body, "data", "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := w.address()
	return &a, nil
}

func (c *Client) GetAddress(ctx context.Context, id int64) (*domain.Address, error) {
	body, err := c.doJSON(ctx, "get_address", http.MethodGet, fmt.Sprintf("/addresses/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return c.decodeAddress("get address", body)
}

func (c *Client) CreateAddress(ctx context.Context, in domain.AddressSnapshot) (*domain.Address, error) {
	body, err := c.doJSON(ctx, "create_address", http.MethodPost, "/addresses", in)
	if err != nil {
		return nil, err
	}
	return c.decodeAddress("create address", body)
}

func (c *Client) UpdateAddress(ctx context.Context, id int64, in domain.AddressSnapshot) (*domain.Address, error) {
	body, err := c.doJSON(ctx, "update_address", http.MethodPut, fmt.Sprintf("/addresses/%d", id), in)
	if err != nil {
		return nil, err
	}
	return c.decodeAddress("update address", body)
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	_, err := c.doJSON(ctx, "delete_address", http.MethodDelete, fmt.Sprintf("/addresses/%d", id), nil)
	return err
}
