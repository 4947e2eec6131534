package users

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/usercards/internal/http/dto/cards"
	"github.com/dropDatabas3/usercards/internal/http/dto/common"
	dto "github.com/dropDatabas3/usercards/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/usercards/internal/http/errors"
	"github.com/dropDatabas3/usercards/internal/http/helpers"
	mw "github.com/dropDatabas3/usercards/internal/http/middlewares"
	svc "github.com/dropDatabas3/usercards/internal/http/services/users"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// UsersController maneja las rutas /api/v1/users
type UsersController struct {
	service svc.UserService
}

// NewUsersController crea un nuevo controller de usuarios.
func NewUsersController(service svc.UserService) *UsersController {
	return &UsersController{service: service}
}

// Create maneja POST /api/v1/users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Create"))

	var req dto.CreateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	u, err := c.service.Create(ctx, svc.CreateInput{
		Name:      req.Name,
		Surname:   req.Surname,
		BirthDate: req.BirthDate.Time,
		Email:     req.Email,
		Cards:     cards.ToInputs(req.Cards),
	})
	if err != nil {
		log.Info("create failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+strconv.FormatInt(u.ID, 10))
	helpers.WriteJSON(w, http.StatusCreated, dto.FromDomain(*u))
}

// Sync maneja POST /api/v1/users/sync. El body es opcional.
func (c *UsersController) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Sync"))

	var req dto.SyncRequest
	if r.ContentLength != 0 && r.Header.Get("Content-Type") != "" {
		if !helpers.ReadJSON(w, r, &req) {
			return
		}
	}

	u, created, err := c.service.Sync(ctx, mw.GetIdentity(ctx), mw.GetClaims(ctx), svc.SyncInput{
		Name:      req.Name,
		Surname:   req.Surname,
		BirthDate: req.BirthDate.Time,
	})
	if err != nil {
		log.Info("sync failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSON(w, status, dto.FromDomain(*u))
}

// Me maneja GET /api/v1/users/me
func (c *UsersController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := c.service.GetByEmail(ctx, mw.GetIdentity(ctx).Name)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomain(*u))
}

// List maneja GET /api/v1/users?page=&size=
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.List"))

	page, size, err := helpers.Pagination(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	list, total, err := c.service.List(ctx, page, size)
	if err != nil {
		log.Error("list failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, common.NewPage(dto.FromDomainList(list), page, size, total))
}

// Batch maneja GET /api/v1/users/batch?ids=1,2,3
func (c *UsersController) Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := helpers.QueryIDs(r, "ids")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	list, err := c.service.GetByIDs(ctx, ids)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomainList(list))
}

// GetByEmail maneja GET /api/v1/users/email/{email}
func (c *UsersController) GetByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("email"))
		return
	}

	u, err := c.service.GetByEmail(ctx, email)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomain(*u))
}

// Get maneja GET /api/v1/users/{id}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := helpers.PathInt64(r, "id")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	u, err := c.service.Get(ctx, id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomain(*u))
}

// Update maneja PUT /api/v1/users/{id}
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := helpers.PathInt64(r, "id")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Update"), logger.UserID(id))

	var req dto.UpdateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	in := svc.UpdateInput{
		Name:      req.Name,
		Surname:   req.Surname,
		BirthDate: req.BirthDate.Time,
	}
	if req.Cards != nil {
		inputs := cards.ToInputs(*req.Cards)
		in.Cards = &inputs
	}

	u, err := c.service.Update(ctx, id, in)
	if err != nil {
		log.Info("update failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomain(*u))
}

// Delete maneja DELETE /api/v1/users/{id}
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := helpers.PathInt64(r, "id")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	if err := c.service.Delete(ctx, id); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
