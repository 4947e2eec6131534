package cards

import (
	"net/http"
	"strconv"

	dto "github.com/dropDatabas3/usercards/internal/http/dto/cards"
	"github.com/dropDatabas3/usercards/internal/http/dto/common"
	httperrors "github.com/dropDatabas3/usercards/internal/http/errors"
	"github.com/dropDatabas3/usercards/internal/http/helpers"
	svc "github.com/dropDatabas3/usercards/internal/http/services/cards"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// CardsController maneja las rutas /api/v1/cards y /api/v1/users/{id}/cards
type CardsController struct {
	service svc.CardService
}

// NewCardsController crea un nuevo controller de tarjetas.
func NewCardsController(service svc.CardService) *CardsController {
	return &CardsController{service: service}
}

// Create maneja POST /api/v1/cards
func (c *CardsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CardsController.Create"))

	var req dto.CreateCardRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	card, err := c.service.Create(ctx, svc.CreateInput{
		UserID:         req.UserID,
		Number:         req.Number,
		Holder:         req.Holder,
		ExpirationDate: req.ExpirationDate.Time,
	})
	if err != nil {
		log.Info("create failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}

	w.Header().Set("Location", "/api/v1/cards/"+strconv.FormatInt(card.ID, 10))
	helpers.WriteJSON(w, http.StatusCreated, dto.FromDomain(*card))
}

// List maneja GET /api/v1/cards?page=&size=
func (c *CardsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, size, err := helpers.Pagination(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	list, total, err := c.service.List(ctx, page, size)
	if err != nil {
		logger.From(ctx).Error("list failed", logger.Op("CardsController.List"), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, common.NewPage(dto.FromDomainList(list), page, size, total))
}

// ListByUser maneja GET /api/v1/users/{id}/cards
func (c *CardsController) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := helpers.PathInt64(r, "id")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	list, err := c.service.ListByUser(ctx, userID)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomainList(list))
}

// Get maneja GET /api/v1/cards/{id}
func (c *CardsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := helpers.PathInt64(r, "id")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}

	card, err := c.service.Get(ctx, id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomain(*card))
}

// Update maneja PUT /api/v1/cards/{id}
func (c *CardsController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := helpers.PathInt64(r, "id")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
		return
	}
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CardsController.Update"), logger.CardID(id))

	var req dto.UpdateCardRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	card, err := c.service.Update(ctx, id, svc.UpdateInput{
		Number:         req.Number,
		Holder:         req.Holder,
		ExpirationDate: req.ExpirationDate.Time,
	})
	if err != nil {
		log.Info("update failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromDomain(*card))
}

// Delete maneja DELETE /api/v1/cards/{id}
func (c *CardsController) Delete(w http.ResponseWriter, r *http.Request) {
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
