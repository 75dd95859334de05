package services

import "github.com/joshua-takyi/tourly/internal/models"

// Notifier accepts notifications without blocking the caller. Delivery
// failures are the notifier's concern and never surface here.
type Notifier interface {
	Notify(n models.Notification)
}

type noopNotifier struct{}

func (noopNotifier) Notify(models.Notification) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
