package notification_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// blockingSender records deliveries and holds each one until released
type blockingSender struct {
	mu      sync.Mutex
	sent    []notification.Message
	started int
	release chan struct{}
	fail    bool
}

func (s *blockingSender) Send(ctx context.Context, msg notification.Message) error {
	s.mu.Lock()
	s.started++
	s.mu.Unlock()

	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.fail {
		return errors.New("smtp unavailable")
	}

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

func (s *blockingSender) Started() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *blockingSender) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

var _ = Describe("Dispatcher", func() {
	It("delivers every accepted message", func() {
		sender := &blockingSender{}
		d := notification.NewDispatcher(sender, notification.DispatcherConfig{MaxWorkers: 3, JobQueueSize: 20}, testLogger())
		defer d.Shutdown()

		for i := 0; i < 10; i++ {
			Expect(d.Enqueue(notification.Message{To: "a@example.com", Kind: notification.KindLateArrival})).To(Succeed())
		}
		d.Flush()
		Expect(sender.Sent()).To(Equal(10))
	})

	It("rejects messages once the queue is full", func() {
		sender := &blockingSender{release: make(chan struct{})}
		d := notification.NewDispatcher(sender, notification.DispatcherConfig{MaxWorkers: 1, JobQueueSize: 1}, testLogger())
		defer d.Shutdown()

		accepted := 0
		Expect(d.Enqueue(notification.Message{To: "a@example.com"})).To(Succeed())
		accepted++
		Eventually(sender.Started).Should(Equal(1))

		Eventually(func() error {
			err := d.Enqueue(notification.Message{To: "a@example.com"})
			if err == nil {
				accepted++
			}
			return err
		}).Should(MatchError(notification.ErrQueueFull))

		close(sender.release)
		d.Flush()
		Expect(sender.Sent()).To(Equal(accepted))
	})

	It("keeps working after a failed delivery", func() {
		sender := &blockingSender{fail: true}
		d := notification.NewDispatcher(sender, notification.DispatcherConfig{MaxWorkers: 1, JobQueueSize: 5, SendTimeout: time.Second}, testLogger())
		defer d.Shutdown()

		Expect(d.Enqueue(notification.Message{To: "a@example.com"})).To(Succeed())
		Expect(d.Enqueue(notification.Message{To: "b@example.com"})).To(Succeed())
		d.Flush()
		Expect(sender.Started()).To(Equal(2))
		Expect(sender.Sent()).To(Equal(0))
	})

	It("refuses new messages after shutdown", func() {
		d := notification.NewDispatcher(&blockingSender{}, notification.DispatcherConfig{}, testLogger())
		d.Shutdown()
		Expect(d.Enqueue(notification.Message{To: "a@example.com"})).To(MatchError(context.Canceled))
	})
})
