// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/storefront/main.go` after changing the
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/menu": {"get": {"tags": ["menu"], "summary": "List menu", "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "q", "in": "query"},
                {"type": "string", "name": "type", "in": "query"},
                {"type": "number", "name": "min_price", "in": "query"},
                {"type": "number", "name": "max_price", "in": "query"},
                {"type": "boolean", "name": "recommended", "in": "query"}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/menu/{id}": {"get": {"tags": ["menu"], "summary": "Get product with its ingredients",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/ingredients": {"get": {"tags": ["menu"], "summary": "List ingredients", "responses": {"200": {"description": "OK"}}}},
        "/cart": {"get": {"tags": ["cart"], "summary": "Current cart and checkout state", "responses": {"200": {"description": "OK"}}}},
        "/cart/items": {"post": {"tags": ["cart"], "summary": "Add a product to the cart", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/cart/items/{id}": {
            "put": {"tags": ["cart"], "summary": "Set quantity or note of a cart line", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["cart"], "summary": "Remove a cart line", "responses": {"200": {"description": "OK"}}}},
        "/checkout/address": {"patch": {"tags": ["checkout"], "summary": "Merge fields into the delivery address", "responses": {"200": {"description": "OK"}}}},
        "/checkout/payment": {"patch": {"tags": ["checkout"], "summary": "Merge fields into the card details", "responses": {"200": {"description": "OK"}}}},
        "/checkout/method": {"put": {"tags": ["checkout"], "summary": "Choose card or cash", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/checkout/next": {"post": {"tags": ["checkout"], "summary": "Advance one step", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}}}},
        "/checkout/prev": {"post": {"tags": ["checkout"], "summary": "Go back one step", "responses": {"200": {"description": "OK"}}}},
        "/checkout/submit": {"post": {"tags": ["checkout"], "summary": "Place the order and record its payment", "responses": {"201": {"description": "Created"}, "202": {"description": "Order created, payment pending"}, "401": {"description": "Unauthorized"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}, "502": {"description": "Bad Gateway"}}}},
        "/checkout/resume-payment": {"post": {"tags": ["checkout"], "summary": "Retry the payment of the pending order", "responses": {"201": {"description": "Created"}, "202": {"description": "Payment still pending"}, "404": {"description": "Not Found"}}}},
        "/checkout/cities": {"get": {"tags": ["checkout"], "summary": "Delivery cities", "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/checkout/cities/retry": {"post": {"tags": ["checkout"], "summary": "Reload delivery cities after a failure", "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/checkout/addresses": {"get": {"tags": ["checkout"], "summary": "Saved addresses offered at the address step", "responses": {"200": {"description": "OK"}}}},
        "/checkout/addresses/{id}/use": {"post": {"tags": ["checkout"], "summary": "Copy a saved address into the form", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Create an account and log in", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Log out", "responses": {"204": {"description": "No Content"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/forgot-password": {"post": {"tags": ["auth"], "summary": "Send a password reset link", "responses": {"200": {"description": "OK"}}}},
        "/auth/reset-password": {"post": {"tags": ["auth"], "summary": "Set a new password with a reset token", "responses": {"200": {"description": "OK"}}}},
        "/orders": {"get": {"tags": ["orders"], "summary": "Order history with tracking", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/addresses": {
            "get": {"tags": ["addresses"], "summary": "Saved addresses", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["addresses"], "summary": "Save an address", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/addresses/{id}": {
            "put": {"tags": ["addresses"], "summary": "Update a saved address", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["addresses"], "summary": "Delete a saved address", "responses": {"204": {"description": "No Content"}}}},
        "/admin/products": {
            "get": {"tags": ["admin"], "summary": "Products for the back-office", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "post": {"tags": ["admin"], "summary": "Create product", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/admin/products/export": {"get": {"tags": ["admin"], "summary": "Export products as xlsx", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK"}}}},
        "/admin/products/{id}": {
            "put": {"tags": ["admin"], "summary": "Update product", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["admin"], "summary": "Delete product", "responses": {"204": {"description": "No Content"}, "422": {"description": "Unprocessable Entity"}}}},
        "/admin/ingredients": {"post": {"tags": ["admin"], "summary": "Create ingredient", "responses": {"201": {"description": "Created"}}}},
        "/admin/ingredients/{id}": {
            "put": {"tags": ["admin"], "summary": "Update ingredient", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["admin"], "summary": "Delete ingredient", "responses": {"204": {"description": "No Content"}}}},
        "/admin/users": {"get": {"tags": ["admin"], "summary": "List users", "responses": {"200": {"description": "OK"}}}},
        "/admin/users/{id}/role": {"put": {"tags": ["admin"], "summary": "Change a user's role", "responses": {"200": {"description": "OK"}}}},
        "/admin/users/{id}": {"delete": {"tags": ["admin"], "summary": "Delete a user", "responses": {"204": {"description": "No Content"}}}},
        "/admin/orders": {"get": {"tags": ["admin"], "summary": "All orders", "responses": {"200": {"description": "OK"}}}},
        "/admin/orders/{id}": {"get": {"tags": ["admin"], "summary": "Get order", "responses": {"200": {"description": "OK"}}}},
        "/admin/orders/{id}/status": {"put": {"tags": ["admin"], "summary": "Set order status", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Backend for the pizzeria storefront: menu, cart, checkout and back-office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
