package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AddRoutes mounts the storefront engine endpoints on the given router.
func AddRoutes(r chi.Router, cartH *CartHandler, checkoutH *CheckoutHandler, productH *ProductHandler) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartH.GetCart)
		r.Post("/items", cartH.AddItem)
		r.Put("/items/{productID}", cartH.UpdateQuantity)
		r.Delete("/items/{productID}", cartH.RemoveItem)
		r.Delete("/", cartH.ClearCart)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", checkoutH.GetState)
		r.Post("/", checkoutH.Begin)
		r.Post("/proceed", checkoutH.Proceed)
		r.Post("/shipping", checkoutH.SubmitShipping)
		r.Post("/payment", checkoutH.SelectPayment)
		r.Post("/back", checkoutH.Back)
		r.Post("/submit", checkoutH.Submit)
		r.Delete("/", checkoutH.Reset)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productH.ListProducts)
		r.Get("/{productID}", productH.GetProduct)
	})
}
