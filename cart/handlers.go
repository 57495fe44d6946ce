package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/models"
	"recipebook/render"
	"recipebook/utils"
)

// Handler serves the cart pages.
type Handler struct {
	svc    *Service
	rd     *render.Renderer
	logger *zap.Logger
}

func NewHandler(svc *Service, rd *render.Renderer, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, rd: rd, logger: logger}
}

// fail writes a plain-text error for err, using the route's own wording
// for the forbidden and server-error cases.
func (h *Handler) fail(w http.ResponseWriter, err error, forbidden, generic string) {
	status := utils.StatusFor(err)
	switch status {
	case http.StatusForbidden:
		http.Error(w, forbidden, status)
	case http.StatusNotFound:
		http.Error(w, "No such item in the cart.", status)
	case http.StatusBadRequest:
		http.Error(w, "Unknown cart action.", status)
	default:
		h.logger.Error(generic, zap.Error(err))
		http.Error(w, generic, http.StatusInternalServerError)
	}
}

// AddToCart handles POST /add-to-cart/:recipeId.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.svc.AddItem(r.Context(), utils.IdentityFromRequest(r), ps.ByName("recipeId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "Recipe not found.", http.StatusNotFound)
			return
		}
		h.fail(w, err, "You must log in to add a recipe to the cart.", "Something went wrong while adding to the cart.")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ViewCart handles GET /cart.
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := utils.IdentityFromRequest(r)
	view, err := h.svc.View(r.Context(), identity)
	if err != nil {
		h.fail(w, err, "You must log in to view the cart.", "Something went wrong while loading the cart.")
		return
	}

	if utils.WantsJSON(r) {
		utils.RespondWithJSON(w, http.StatusOK, view)
		return
	}
	h.rd.HTML(w, http.StatusOK, "cart", render.Page{Title: "Cart", User: identity, Data: view})
}

type updateCartRequest struct {
	Action   string      `json:"action"`
	Quantity interface{} `json:"quantity"`
}

// UpdateCart handles POST /update-cart/:itemId with {action, quantity}
// as a form or JSON.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity := utils.IdentityFromRequest(r)
	if !identity.Authenticated() {
		h.fail(w, models.ErrUnauthorized, "You must log in to manage the cart.", "")
		return
	}

	var req updateCartRequest
	if utils.IsJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.Action = r.PostFormValue("action")
		req.Quantity = r.PostFormValue("quantity")
	}

	quantity := ""
	if req.Quantity != nil {
		quantity = fmt.Sprint(req.Quantity)
	}

	err := h.svc.UpdateItem(r.Context(), identity, ps.ByName("itemId"), req.Action, quantity)
	if err != nil {
		h.fail(w, err, "You must log in to manage the cart.", "Something went wrong while updating the cart.")
		return
	}
	http.Redirect(w, r, "/cart", http.StatusFound)
}
