package model

import "slices"

// orderTransitions lists the statuses reachable from each status. Moving to
// the current status is always allowed and treated as a no-op.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// CanTransition reports whether an order may move from current to target.
func CanTransition(current, target OrderStatus) bool {
	if current == target {
		return true
	}
	next, ok := orderTransitions[current]
	if !ok {
		return false
	}
	return slices.Contains(next, target)
}

// CanReconcile reports whether a provider payment status may move an order
// from current to target. It extends CanTransition with cancelled -> paid: a
// rejected attempt cancels the order, and a later approved payment on the
// same preference must still mark it paid.
func CanReconcile(current, target OrderStatus) bool {
	if current == OrderStatusCancelled && target == OrderStatusPaid {
		return true
	}
	return CanTransition(current, target)
}
