package handlers

import (
	"productapi/internal/repos"
	"productapi/internal/services"
)

type Deps struct {
	Auth           *services.AuthService
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
}

func NewDeps(products repos.ProductRepository, auth *services.AuthService) *Deps {
	productSvc := services.NewProductService(products)

	return &Deps{
		Auth:           auth,
		AuthHandler:    &AuthHandler{Auth: auth},
		ProductHandler: &ProductHandler{Products: productSvc},
	}
}
