package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/models"
	"recipebook/render"
	"recipebook/utils"
)

// CartViewer supplies the cart lines the order form is prefilled with.
type CartViewer interface {
	View(ctx context.Context, identity *models.Identity) (*models.CartView, error)
}

// Handler serves the checkout pages.
type Handler struct {
	svc    *Service
	carts  CartViewer
	signer *ReceiptSigner
	rd     *render.Renderer
	logger *zap.Logger
}

func NewHandler(svc *Service, carts CartViewer, signer *ReceiptSigner, rd *render.Renderer, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, carts: carts, signer: signer, rd: rd, logger: logger}
}

// OrderForm handles GET /order. Logged-in users get their cart lines as
// the order items.
func (h *Handler) OrderForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := utils.IdentityFromRequest(r)
	lines := []models.CartLineView{}
	if identity != nil {
		view, err := h.carts.View(r.Context(), identity)
		if err != nil {
			h.logger.Warn("order form without cart", zap.Error(err))
		} else {
			lines = view.Lines
		}
	}
	h.rd.HTML(w, http.StatusOK, "order", render.Page{Title: "Order", User: identity, Data: lines})
}

// PlaceOrder handles POST /order with {address, phoneNumber, items}.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		req models.PlaceOrderRequest
		err error
	)
	if utils.IsJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	} else {
		req, err = orderFromForm(r)
		if err != nil {
			h.logger.Error("order form rejected", zap.Error(err))
			http.Error(w, "Something went wrong while placing the order.", utils.StatusFor(err))
			return
		}
	}

	order, err := h.svc.Place(r.Context(), req)
	if err != nil {
		h.logger.Error("place order failed", zap.Error(err))
		http.Error(w, "Something went wrong while placing the order.", utils.StatusFor(err))
		return
	}

	if utils.WantsJSON(r) {
		utils.RespondWithJSON(w, http.StatusCreated, order)
		return
	}
	http.Redirect(w, r, "/thank-you/"+order.OrderID, http.StatusFound)
}

// orderFromForm pairs the repeated itemId and quantity fields by
// position. A blank or missing quantity is left nil so validation
// reports it as missing.
func orderFromForm(r *http.Request) (models.PlaceOrderRequest, error) {
	if err := r.ParseForm(); err != nil {
		return models.PlaceOrderRequest{}, err
	}
	req := models.PlaceOrderRequest{
		Address:     strings.TrimSpace(r.PostForm.Get("address")),
		PhoneNumber: strings.TrimSpace(r.PostForm.Get("phoneNumber")),
	}

	ids := r.PostForm["itemId"]
	quantities := r.PostForm["quantity"]
	for i, id := range ids {
		item := models.OrderItemRequest{ItemID: strings.TrimSpace(id)}
		if i < len(quantities) && strings.TrimSpace(quantities[i]) != "" {
			q, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
			if err != nil {
				return req, fmt.Errorf("quantity %q is not a number: %w", quantities[i], models.ErrValidation)
			}
			item.Quantity = &q
		}
		req.Items = append(req.Items, item)
	}
	return req, nil
}

// ThankYou handles GET /thank-you/:orderId.
func (h *Handler) ThankYou(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.svc.Get(r.Context(), ps.ByName("orderId"))
	if err != nil {
		h.notFoundOr500(w, err)
		return
	}
	h.rd.HTML(w, http.StatusOK, "thanks", render.Page{Title: "Thank you", User: utils.IdentityFromRequest(r), Data: order})
}

// Receipt handles GET /order/:orderId/receipt.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.svc.Get(r.Context(), ps.ByName("orderId"))
	if err != nil {
		h.notFoundOr500(w, err)
		return
	}

	pdf, err := h.signer.Receipt(order)
	if err != nil {
		h.logger.Error("receipt failed", zap.String("orderId", order.OrderID), zap.Error(err))
		http.Error(w, "Failed to generate receipt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) notFoundOr500(w http.ResponseWriter, err error) {
	if utils.StatusFor(err) == http.StatusNotFound {
		http.Error(w, "Order not found.", http.StatusNotFound)
		return
	}
	h.logger.Error("load order failed", zap.Error(err))
	http.Error(w, "Something went wrong while loading the order.", http.StatusInternalServerError)
}
