package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// NotificationService delivers accountability events to whoever is
// listening. Implementations must be safe for concurrent use.
type NotificationService interface {
	SendAccountabilityNotification(ctx context.Context, notification AccountabilityNotification) error
}

// AccountabilityNotification describes a change in who is responsible for
// a computer.
type AccountabilityNotification struct {
	Type      NotificationType
	Recipient string
	Message   string
	Metadata  map[string]string
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeComputerAssigned   NotificationType = "computer_assigned"
	NotificationTypeComputerReassigned NotificationType = "computer_reassigned"
	NotificationTypeHistoryAdded       NotificationType = "history_added"
)

// noopNotifier is used when a service is built without a notifier.
type noopNotifier struct{}

func (noopNotifier) SendAccountabilityNotification(context.Context, AccountabilityNotification) error {
	return nil
}

func notifierOrNoop(n NotificationService) NotificationService {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// notifyTimeout bounds a single delivery, retries included.
const notifyTimeout = 30 * time.Second

// dispatcher delivers notifications off the request path, one at a time
// and in the order they were queued. A worker goroutine runs while the
// queue is non-empty and exits once it drains.
type dispatcher struct {
	notifier NotificationService
	logger   *log.Logger

	mu      sync.Mutex
	queue   []AccountabilityNotification
	running bool
	wg      sync.WaitGroup
}

func newDispatcher(notifier NotificationService, logger *log.Logger) *dispatcher {
	return &dispatcher{notifier: notifierOrNoop(notifier), logger: logger}
}

func (d *dispatcher) send(n AccountabilityNotification) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queue = append(d.queue, n)
	if d.running {
		return
	}
	d.running = true
	d.wg.Add(1)
	go d.drain()
}

func (d *dispatcher) drain() {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		n := d.queue[0]
		d.queue[0] = AccountabilityNotification{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.deliver(n)
	}
}

func (d *dispatcher) deliver(n AccountabilityNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := d.notifier.SendAccountabilityNotification(ctx, n); err != nil {
		d.logger.Printf("Failed to send %s notification: %v", n.Type, err)
	}
}

// Wait blocks until every queued notification has been delivered.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
