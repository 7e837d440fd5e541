package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"easyorders/entity"
	"easyorders/internal/lib/clock"
	apierrors "easyorders/internal/lib/errors"
	"easyorders/internal/lib/sl"
	"easyorders/internal/security"
)

// UpdateOrderStatus moves an order to another managed status on behalf of
// actor. Every failure is returned as an *errors.APIError.
func (c *Core) UpdateOrderStatus(ctx context.Context, actor *entity.UserAuth, update *entity.StatusUpdate) (*entity.StatusChange, error) {
	log := c.log.With(
		slog.Int64("order_id", update.OrderID),
		slog.String("status", update.Status),
		slog.Int64("user_id", actor.ID),
	)
	ip := update.RemoteIP

	if c.tokens == nil || c.tokens.VerifyNonce(update.Nonce, entity.ActionUpdateStatus, actor.ID) != nil {
		c.guard.LogSecurityEvent(ctx, security.EventInvalidNonce, actor, ip, map[string]any{
			"action":   entity.ActionUpdateStatus,
			"order_id": update.OrderID,
		})
		c.observeRejected("invalid_nonce")
		return nil, apierrors.NewInvalidNonceError()
	}

	err := c.guard.CheckRateLimit(ctx, actor, entity.RateLimitActionStatus, c.rateLimit, c.rateWindow)
	if err != nil {
		var limited *security.RateLimitError
		switch {
		case errors.Is(err, security.ErrNotLoggedIn):
			c.observeRejected("not_logged_in")
			return nil, apierrors.NewUnauthorizedError(err.Error())
		case errors.As(err, &limited):
			c.guard.LogSecurityEvent(ctx, security.EventRateLimited, actor, ip, map[string]any{
				"action": entity.RateLimitActionStatus,
				"wait":   limited.WaitSeconds(),
			})
			c.observeRejected("rate_limited")
			return nil, apierrors.NewRateLimitError(limited.WaitSeconds())
		default:
			log.With(sl.Err(err)).Error("rate limit check")
			return nil, apierrors.NewInternalError("Failed to update order status")
		}
	}

	settings, err := c.LoadSettings(ctx)
	if err != nil {
		log.With(sl.Err(err)).Error("load settings")
		return nil, apierrors.NewInternalError("Failed to update order status")
	}
	if !actor.CanManageOrders() || !security.HasAccess(actor, settings.RoleAccess) {
		c.guard.LogSecurityEvent(ctx, security.EventUnauthorizedUpdate, actor, ip, map[string]any{
			"order_id": update.OrderID,
		})
		c.observeRejected("forbidden")
		return nil, apierrors.NewForbiddenError("You do not have permission to update orders.")
	}

	if c.orders == nil {
		log.Error("order store not set")
		return nil, apierrors.NewInternalError("Failed to update order status")
	}
	order, err := c.orders.GetOrder(ctx, update.OrderID)
	if err != nil && !errors.Is(err, entity.ErrOrderNotFound) {
		log.With(sl.Err(err)).Error("get order")
		return nil, apierrors.NewInternalError("Failed to update order status")
	}
	if !order.IsPurchase() {
		c.observeRejected("not_found")
		return nil, apierrors.NewNotFoundErrorWithID("order", formatID(update.OrderID))
	}

	target := entity.PlainStatus(update.Status)
	if !c.isManagedStatus(target) {
		c.observeRejected("invalid_status")
		return nil, apierrors.NewInvalidInputError("status", fmt.Sprintf("status %q is not managed", target))
	}

	previous := order.Status
	note := fmt.Sprintf("Order status changed from %s to %s.",
		entity.StatusName(previous), entity.StatusName(target))
	if err = c.orders.UpdateOrderStatus(ctx, order.ID, target, note); err != nil {
		log.With(sl.Err(err)).Error("update order status")
		return nil, apierrors.NewInternalError("Failed to update order status")
	}

	change := &entity.StatusChange{
		OrderID:     order.ID,
		OldStatus:   previous,
		NewStatus:   target,
		StatusLabel: settings.StatusLabel(target),
		UserID:      actor.ID,
		UserName:    actor.DisplayName(),
		ChangedAt:   clock.Now(),
	}

	c.writeLog(ctx, change)
	c.guard.LogSecurityEvent(ctx, security.EventStatusUpdated, actor, ip, map[string]any{
		"order_id":   order.ID,
		"old_status": previous,
		"new_status": target,
	})
	if c.metrics != nil {
		c.metrics.StatusUpdated(previous, target)
	}
	if c.feed != nil {
		c.feed.Broadcast(change)
	}

	log.Info("order status updated", slog.String("old_status", previous))
	return change, nil
}

// writeLog appends the activity entry of change. A failed write is logged
// and does not undo the transition.
func (c *Core) writeLog(ctx context.Context, change *entity.StatusChange) {
	if c.activity == nil {
		return
	}
	entry := &entity.LogEntry{
		UserID:   change.UserID,
		UserName: change.UserName,
		OrderID:  formatID(change.OrderID),
		Action:   entity.LogActionStatusChanged,
		Details:  fmt.Sprintf("Status changed from %s to %s", change.OldStatus, change.NewStatus),
	}
	if err := c.activity.AddLog(ctx, entry); err != nil {
		c.log.With(
			slog.Int64("order_id", change.OrderID),
			sl.Err(err),
		).Error("write activity log")
	}
}
