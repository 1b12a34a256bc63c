package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proprio/propertyhub/internal/accesscontrol"
	"github.com/proprio/propertyhub/internal/config"
	"github.com/proprio/propertyhub/internal/domain/property"
	"github.com/proprio/propertyhub/internal/http/middlewares"
)

type PropertiesStore interface {
	Create(ctx context.Context, req property.CreatePropertyRequest, creatorID string) (property.Property, error)
	GetByID(ctx context.Context, id string) (property.Property, error)
	List(ctx context.Context) ([]property.Property, error)
	Update(ctx context.Context, id string, req property.UpdatePropertyRequest) (property.Property, error)
	Delete(ctx context.Context, id string) error
}

type PropertiesHandler struct {
	repo PropertiesStore
}

func NewPropertiesHandler(repo PropertiesStore) *PropertiesHandler {
	return &PropertiesHandler{repo: repo}
}

// ListProperties sits behind the admin role gate in the router.
func (h *PropertiesHandler) ListProperties(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	properties, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list properties")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, properties)
}

// CreateProperty is open to any authenticated caller; the creator joins the
// access set automatically.
func (h *PropertiesHandler) CreateProperty(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Missing identity")
		return
	}

	var req property.CreatePropertyRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req, actor.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create property")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PropertiesHandler) GetPropertyByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "id must be a valid UUID")
		return
	}

	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			RespondNotFound(ctx, "Property not found")
			return
		}
		RespondInternal(ctx, "Could not fetch property")
		return
	}

	if !accesscontrol.CanAccessProperty(actor, p.Users) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

// UpdateProperty serves PUT and PATCH identically: partial merge either way.
func (h *PropertiesHandler) UpdateProperty(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "id must be a valid UUID")
		return
	}

	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Missing identity")
		return
	}

	var req property.UpdatePropertyRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			RespondNotFound(ctx, "Property not found")
			return
		}
		RespondInternal(ctx, "Could not update property")
		return
	}

	if !accesscontrol.CanAccessProperty(actor, existing.Users) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	updated, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			RespondNotFound(ctx, "Property not found")
			return
		}
		RespondInternal(ctx, "Could not update property")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *PropertiesHandler) DeleteProperty(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "id must be a valid UUID")
		return
	}

	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			RespondNotFound(ctx, "Property not found")
			return
		}
		RespondInternal(ctx, "Could not delete property")
		return
	}

	if !accesscontrol.CanAccessProperty(actor, existing.Users) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			RespondNotFound(ctx, "Property not found")
			return
		}
		RespondInternal(ctx, "Could not delete property")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Property deleted",
	})
}
