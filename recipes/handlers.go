package recipes

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipebook/db"
	"recipebook/models"
	"recipebook/render"
	"recipebook/uploads"
	"recipebook/utils"
)

const maxUploadSize = 10 << 20

// ImageStore saves an uploaded recipe image and removes it again when the
// recipe is not stored.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (uploads.Saved, error)
	Remove(saved uploads.Saved) error
}

// Handler serves the catalog pages.
type Handler struct {
	svc    *Service
	images ImageStore
	rd     *render.Renderer
	logger *zap.Logger
}

func NewHandler(svc *Service, images ImageStore, rd *render.Renderer, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, images: images, rd: rd, logger: logger}
}

type indexData struct {
	Filter  models.RecipeFilter
	Recipes []models.Recipe
}

// Index handles GET / with optional category and difficulty filters.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := models.RecipeFilter{
		Category:   strings.TrimSpace(q.Get("category")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
	}

	list, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list recipes failed", zap.Error(err))
		http.Error(w, "Something went wrong while loading recipes.", http.StatusInternalServerError)
		return
	}

	if utils.WantsJSON(r) {
		utils.RespondWithJSON(w, http.StatusOK, list)
		return
	}
	h.rd.HTML(w, http.StatusOK, "index", render.Page{
		User: utils.IdentityFromRequest(r),
		Data: indexData{Filter: filter, Recipes: list},
	})
}

// Get handles GET /recipe/:id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := db.ParseID(ps.ByName("id"))
	if !ok {
		http.Error(w, "Recipe not found.", http.StatusNotFound)
		return
	}

	recipe, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "Recipe not found.", http.StatusNotFound)
			return
		}
		h.logger.Error("get recipe failed", zap.String("id", id.Hex()), zap.Error(err))
		http.Error(w, "Something went wrong while loading the recipe.", http.StatusInternalServerError)
		return
	}

	if utils.WantsJSON(r) {
		utils.RespondWithJSON(w, http.StatusOK, recipe)
		return
	}
	h.rd.HTML(w, http.StatusOK, "recipe", render.Page{Title: recipe.Title, User: utils.IdentityFromRequest(r), Data: recipe})
}

func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.rd.HTML(w, http.StatusOK, "add-recipe", render.Page{Title: "Add recipe", User: utils.IdentityFromRequest(r)})
}

// Create handles POST /add-recipe, multipart with an optional image.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity := utils.IdentityFromRequest(r)
	if identity == nil {
		http.Error(w, "You must log in to add a recipe.", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := parseForm(r); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	recipe, err := recipeFromForm(r)
	if err == nil {
		// validated before the image touches the disk
		recipe.CreatedBy = identity.UserID
		err = models.Validate(recipe)
	}
	if err == nil {
		err = h.attachImage(r, recipe)
	}
	if err == nil {
		err = h.svc.Create(r.Context(), identity, recipe)
		if err != nil && recipe.Image != "" {
			saved := uploads.Saved{Image: recipe.Image, Thumbnail: recipe.Thumbnail}
			if rmErr := h.images.Remove(saved); rmErr != nil {
				h.logger.Warn("remove orphaned image failed", zap.String("image", saved.Image), zap.Error(rmErr))
			}
		}
	}
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			http.Error(w, "You must log in to add a recipe.", http.StatusForbidden)
			return
		}
		h.logger.Error("add recipe failed", zap.Error(err))
		http.Error(w, "Something went wrong while adding the recipe.", http.StatusInternalServerError)
		return
	}

	h.logger.Info("recipe added", zap.String("id", recipe.ID.Hex()), zap.String("by", identity.Username))
	http.Redirect(w, r, "/", http.StatusFound)
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

func (h *Handler) attachImage(r *http.Request, recipe *models.Recipe) error {
	if r.MultipartForm == nil || len(r.MultipartForm.File["image"]) == 0 {
		return nil
	}
	saved, err := h.images.Save(r.MultipartForm.File["image"][0])
	if err != nil {
		return err
	}
	recipe.Image = saved.Image
	recipe.Thumbnail = saved.Thumbnail
	return nil
}

var knownFields = map[string]bool{
	"title": true, "description": true, "category": true, "difficulty": true,
	"ingredients": true, "instructions": true, "prepTime": true, "servings": true,
}

// recipeFromForm maps the known fields and keeps every other non-empty
// field verbatim in Extra.
func recipeFromForm(r *http.Request) (*models.Recipe, error) {
	form := r.PostForm
	recipe := &models.Recipe{
		Title:        strings.TrimSpace(form.Get("title")),
		Description:  strings.TrimSpace(form.Get("description")),
		Category:     strings.TrimSpace(form.Get("category")),
		Difficulty:   strings.TrimSpace(form.Get("difficulty")),
		Instructions: strings.TrimSpace(form.Get("instructions")),
		PrepTime:     strings.TrimSpace(form.Get("prepTime")),
		Ingredients:  splitLines(form["ingredients"]),
	}

	if s := strings.TrimSpace(form.Get("servings")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("servings %q is not a number: %w", s, models.ErrValidation)
		}
		recipe.Servings = n
	}

	for key, values := range form {
		if knownFields[key] || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		if recipe.Extra == nil {
			recipe.Extra = make(map[string]string)
		}
		recipe.Extra[key] = values[0]
	}
	return recipe, nil
}

// splitLines accepts ingredients either as repeated fields or as one
// field with one ingredient per line.
func splitLines(values []string) []string {
	var out []string
	for _, v := range values {
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}
