package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/service"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/rooms"
	apperrors "github.com/SahilMindbowser/mb-meetings-poc/pkg/errors"
	httputil "github.com/SahilMindbowser/mb-meetings-poc/pkg/http"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/logger"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

type ReservationHandler struct {
	service  service.BookingService
	registry *rooms.Registry
	log      *logger.Logger
}

func NewReservationHandler(service service.BookingService, registry *rooms.Registry, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service:  service,
		registry: registry,
		log:      log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	created, err := h.service.Create(r.Context(), httputil.ExtractCallerID(r), &reservation)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'owner_id' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	page, total := paginate(reservations, limit, offset)
	if err := httputil.WritePaginated(w, page, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByOwner", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	updated, err := h.service.Update(r.Context(), id, httputil.ExtractCallerID(r), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Cancel(r.Context(), id, httputil.ExtractCallerID(r)); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.registry.List()); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRooms", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) RoomSchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("id")

	startTime, err := httputil.ExtractTimeParam(r, "start_time")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RoomSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	endTime, err := httputil.ExtractTimeParam(r, "end_time")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RoomSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var window *model.Interval
	if startTime != nil && endTime != nil {
		ivl, err := model.NewInterval(*startTime, *endTime)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("end_time must be after start_time")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "RoomSchedule", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		window = &ivl
	} else if startTime != nil || endTime != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'start_time' and 'end_time' must be provided together")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RoomSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RoomSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, err := h.service.RoomSchedule(r.Context(), roomID, window)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RoomSchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	page, total := paginate(reservations, limit, offset)
	if err := httputil.WritePaginated(w, page, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "RoomSchedule", "operation", "WritePaginated", "error", err)
	}
}

type FreeSlotsResponse struct {
	RoomID           string           `json:"room_id"`
	Date             string           `json:"date"`
	Timezone         string           `json:"timezone"`
	Slots            []model.Interval `json:"slots"`
	FullDayAvailable bool             `json:"full_day_available"`
}

func (h *ReservationHandler) FreeSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("id")
	query := r.URL.Query()

	tz := query.Get("tz")
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("unknown timezone: "+tz)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'date' query parameter is required (YYYY-MM-DD)")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	// Parsed in the requested zone, so the date names the caller's calendar
	// day rather than the UTC one.
	day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, err := h.service.FreeSlots(r.Context(), roomID, day, loc)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	fullDay := model.FullDay(day, loc)
	resp := FreeSlotsResponse{
		RoomID:           roomID,
		Date:             dateStr,
		Timezone:         tz,
		Slots:            slots,
		FullDayAvailable: len(slots) == 1 && slots[0].Equal(fullDay),
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "FreeSlots", "operation", "WriteSuccess", "error", err)
	}
}

// paginate slices an in-memory result snapshot; the store keeps its narrow
// listing interface and ordering guarantee.
func paginate(reservations []*model.Reservation, limit int, offset int64) ([]*model.Reservation, int64) {
	total := int64(len(reservations))
	if offset >= total {
		return []*model.Reservation{}, total
	}
	end := offset + int64(limit)
	if end > total {
		end = total
	}
	return reservations[offset:end], total
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.ListByOwner)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id", h.Update)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
	router.GET("/api/v1/rooms", h.ListRooms)
	router.GET("/api/v1/rooms/:id/schedule", h.RoomSchedule)
	router.GET("/api/v1/rooms/:id/free-slots", h.FreeSlots)
}
