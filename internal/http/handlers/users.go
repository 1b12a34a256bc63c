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
	"github.com/proprio/propertyhub/internal/domain/user"
	"github.com/proprio/propertyhub/internal/http/middlewares"
	"github.com/proprio/propertyhub/internal/security"
)

type UsersStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, upd user.Update) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	repo UsersStore
}

func NewUsersHandler(repo UsersStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

// ListUsers sits behind the admin role gate in the router; there is no
// ownership fallback on collection reads.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
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

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	if !accesscontrol.CanAccessUser(actor, u.ID) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

// UpdateUser applies a partial merge: only fields present in the payload
// overwrite stored values, and a fresh password is re-hashed before storage.
func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
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

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update user")
		return
	}

	if !accesscontrol.CanAccessUser(actor, existing.ID) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	upd := user.Update{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}

		upd.PasswordHash = &hash
	}

	updated, err := h.repo.Update(cctx, id, upd)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "Email is already in use")
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
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
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	if !accesscontrol.CanAccessUser(actor, existing.ID) {
		RespondForbidden(ctx, "Access denied")
		return
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User deleted",
	})
}
