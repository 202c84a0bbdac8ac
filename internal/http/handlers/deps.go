package handlers

import (
	"mokolo/internal/api"
	"mokolo/internal/cart"
	"mokolo/internal/config"
	"mokolo/internal/session"
)

type Deps struct {
	ShopHandler     *ShopHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	AccountHandler  *AccountHandler
	AdminHandler    *AdminHandler
	SupplierHandler *SupplierHandler

	Admins    *session.Admins
	Customers *session.Customers
	Suppliers *session.Suppliers
}

func NewDeps(cfg config.Config, store session.Storage) *Deps {
	base := api.New(cfg.APIURL)
	adminAPI := api.NewAdmin(base)
	supplierAPI := api.NewSupplier(base)
	customerAPI := api.NewCustomer(base)
	shopAPI := api.NewShop(base)

	admins := session.NewAdmins(adminAPI, store)
	customers := session.NewCustomers(customerAPI, store)
	suppliers := session.NewSuppliers(supplierAPI, store)
	carts := cart.NewStore(shopAPI)

	return &Deps{
		ShopHandler:     &ShopHandler{Shop: shopAPI},
		CartHandler:     &CartHandler{Carts: carts},
		CheckoutHandler: &CheckoutHandler{Shop: shopAPI, Carts: carts},
		AccountHandler:  &AccountHandler{Customers: customers, Customer: customerAPI, Carts: carts},
		AdminHandler:    &AdminHandler{Admins: admins, API: adminAPI},
		SupplierHandler: &SupplierHandler{Suppliers: suppliers, API: supplierAPI},

		Admins:    admins,
		Customers: customers,
		Suppliers: suppliers,
	}
}
