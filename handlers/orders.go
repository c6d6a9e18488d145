// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/AvelDev/easyfood/auth"
	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/watch"
)

type OrderHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *watch.Hub
}

func NewOrderHandler(db *sql.DB, cfg cliparse.Config, hub *watch.Hub) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, hub: hub}
}

// SubmitOrder handles PUT /polls/:id/order
// Orders are accepted only while the poll is closed for voting and the
// ordering deadline (if any) has not passed. One order per (poll, user);
// resubmitting replaces dish, notes, and cost.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	var req models.SubmitOrderRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Dish == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "dish is required")
		return
	}
	if req.CostCents < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "cost_cents cannot be negative")
		return
	}

	poll, err := watch.LoadPoll(h.db, pollID)
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if poll == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	now := time.Now()
	if !poll.Closed {
		middleware.ErrorResponse(w, http.StatusConflict, "Ordering opens after voting closes")
		return
	}
	if !poll.CanOrder(now) {
		middleware.ErrorResponse(w, http.StatusConflict, "Ordering has ended for this poll")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var orderID string
	err = tx.QueryRow(`
		SELECT id FROM food_order WHERE poll_id = $1 AND user_id = $2
	`, pollID, user.ID).Scan(&orderID)

	isUpdate := err != sql.ErrNoRows
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if isUpdate {
		// User edits touch the user fields only; admin fields stay as set.
		_, err = tx.Exec(`
			UPDATE food_order
			SET dish = $1, notes = $2, cost_cents = $3, updated_at = $4
			WHERE id = $5
		`, req.Dish, req.Notes, req.CostCents, now, orderID)
		if err != nil {
			slog.Error("failed to update order", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update order")
			return
		}
	} else {
		orderID, _ = auth.GenerateID(16)
		_, err = tx.Exec(`
			INSERT INTO food_order (id, poll_id, user_id, dish, notes, cost_cents,
			                        adjustment_cents, payment_status, confirmed, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7, FALSE, $8, $9)
		`, orderID, pollID, user.ID, req.Dish, req.Notes, req.CostCents,
			models.PaymentPending, now, now)
		if err != nil {
			slog.Error("failed to insert order", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit order")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit order")
		return
	}

	h.hub.Publish(pollID)

	message := "Order submitted"
	if isUpdate {
		message = "Order updated"
	}

	slog.Info("order submitted", "poll_id", pollID, "user_id", user.ID,
		"dish", req.Dish, "cost_cents", req.CostCents, "is_update", isUpdate)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitOrderResponse{
		OrderID: orderID,
		Message: message,
	})
}

// GetMyOrder handles GET /polls/:id/order
func (h *OrderHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	order, err := loadOrder(h.db, pollID, user.ID)
	if err != nil {
		slog.Error("failed to query order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if order == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No order submitted")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, order)
}

// DeleteOrder handles DELETE /polls/:id/order
// Owners may withdraw their order while ordering is still open.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	poll, err := watch.LoadPoll(h.db, pollID)
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if poll == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	if !poll.CanOrder(time.Now()) {
		middleware.ErrorResponse(w, http.StatusConflict, "Ordering has ended for this poll")
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM food_order WHERE poll_id = $1 AND user_id = $2
	`, pollID, user.ID)
	if err != nil {
		slog.Error("failed to delete order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete order")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "No order submitted")
		return
	}

	h.hub.Publish(pollID)

	slog.Info("order deleted", "poll_id", pollID, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListOrders handles GET /polls/:id/orders
// Every signed-in user sees the full order list with adjusted totals.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if requireUser(h.db, h.cfg, w, r) == nil {
		return
	}
	pollID := r.PathValue("id")

	poll, err := watch.LoadPoll(h.db, pollID)
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if poll == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	orders, err := watch.LoadOrders(h.db, pollID)
	if err != nil {
		slog.Error("failed to load orders", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var total int64
	for i := range orders {
		total += orders[i].Order.TotalCents()
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"orders":           orders,
		"order_count":      len(orders),
		"total_cost_cents": total,
	})
}

// UpdateOrderAdmin handles PATCH /polls/:id/orders/:userID
// Admin-only adjustments: notes, cost adjustment, payment status, and the
// confirmation flag. Allowed in any state once the order exists.
func (h *OrderHandler) UpdateOrderAdmin(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(h.db, h.cfg, w, r)
	if admin == nil {
		return
	}
	pollID := r.PathValue("id")
	userID := r.PathValue("userID")

	var req models.AdminOrderUpdateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.PaymentStatus != nil && !models.ValidPaymentStatus(*req.PaymentStatus) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "payment_status must be pending, paid, or unpaid")
		return
	}

	order, err := loadOrder(h.db, pollID, userID)
	if err != nil {
		slog.Error("failed to query order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if order == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Order not found")
		return
	}

	if req.AdminNotes != nil {
		order.AdminNotes = *req.AdminNotes
	}
	if req.AdjustmentCents != nil {
		order.AdjustmentCents = *req.AdjustmentCents
	}
	if req.PaymentStatus != nil {
		order.PaymentStatus = *req.PaymentStatus
	}
	if req.Confirmed != nil {
		order.Confirmed = *req.Confirmed
	}

	_, err = h.db.Exec(`
		UPDATE food_order
		SET admin_notes = $1, adjustment_cents = $2, payment_status = $3, confirmed = $4, updated_at = $5
		WHERE id = $6
	`, order.AdminNotes, order.AdjustmentCents, order.PaymentStatus, order.Confirmed, time.Now(), order.ID)
	if err != nil {
		slog.Error("failed to update order", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	h.hub.Publish(pollID)

	slog.Info("order adjusted", "poll_id", pollID, "user_id", userID, "admin", admin.ID)
	middleware.JSONResponse(w, http.StatusOK, order)
}

// loadOrder reads one user's order for a poll. Returns (nil, nil) when absent.
func loadOrder(db *sql.DB, pollID, userID string) (*models.Order, error) {
	var o models.Order
	var notes, adminNotes sql.NullString
	err := db.QueryRow(`
		SELECT id, poll_id, user_id, dish, notes, cost_cents, admin_notes,
		       adjustment_cents, payment_status, confirmed, created_at, updated_at
		FROM food_order
		WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(
		&o.ID, &o.PollID, &o.UserID, &o.Dish, &notes, &o.CostCents, &adminNotes,
		&o.AdjustmentCents, &o.PaymentStatus, &o.Confirmed, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Notes = notes.String
	o.AdminNotes = adminNotes.String
	return &o, nil
}
