package worker

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"txdash/internal/amqp"
	"txdash/internal/core"
	"txdash/internal/query"
	"txdash/internal/store"
)

type fakePublisher struct {
	mu      sync.Mutex
	msgs    []*amqp.MonthlyReportMessage
	failFor map[int]bool
}

func (f *fakePublisher) PublishReport(_ context.Context, msg *amqp.MonthlyReportMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.Month] {
		return errors.New("broker unavailable")
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func testService(t *testing.T) *query.Service {
	t.Helper()
	var records []core.Record
	for i := 0; i < 48; i++ {
		records = append(records, core.Record{
			ID:         int64(i + 1),
			Title:      "item",
			Price:      float64(i * 37 % 1100),
			Category:   []string{"electronics", "jewelery", "men's clothing"}[i%3],
			Sold:       i%2 == 0,
			DateOfSale: time.Date(2021, time.Month(i%12+1), 10, 12, 0, 0, 0, time.UTC),
		})
	}
	s, err := store.New(records)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return query.NewService(s)
}

func TestPublishAllSendsOneMessagePerMonth(t *testing.T) {
	svc := testService(t)
	pub := &fakePublisher{}
	w := NewReportWorker(svc, pub, 3)
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	n, err := w.PublishAll(context.Background())
	if err != nil {
		t.Fatalf("PublishAll: %v", err)
	}
	if n != 12 || len(pub.msgs) != 12 {
		t.Fatalf("published %d (%d messages), want 12", n, len(pub.msgs))
	}

	for i, msg := range pub.msgs {
		month := i + 1
		if msg.Month != month {
			t.Errorf("message %d: month = %d", i, msg.Month)
		}
		want, err := svc.Combined(month)
		if err != nil {
			t.Fatalf("Combined(%d): %v", month, err)
		}
		if !reflect.DeepEqual(msg.Report, want) {
			t.Errorf("month %d: report differs from Combined", month)
		}
		if msg.RecordCount != 4 || !msg.GeneratedAt.Equal(fixed) {
			t.Errorf("month %d: count=%d generatedAt=%v", month, msg.RecordCount, msg.GeneratedAt)
		}
	}
}

func TestPublishAllContinuesAfterFailures(t *testing.T) {
	pub := &fakePublisher{failFor: map[int]bool{2: true, 7: true}}
	w := NewReportWorker(testService(t), pub, 0)

	n, err := w.PublishAll(context.Background())
	if err == nil {
		t.Fatal("expected joined publish error")
	}
	if n != 10 || pub.count() != 10 {
		t.Fatalf("published %d (%d messages), want 10", n, pub.count())
	}
	for _, month := range []string{"month 2", "month 7"} {
		if !strings.Contains(err.Error(), month) {
			t.Errorf("error %q does not mention %s", err, month)
		}
	}
}

func TestBuildReportsHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReportWorker(testService(t), &fakePublisher{}, 2).BuildReports(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	_, err := NewScheduler(context.Background(), "every tuesday", NewReportWorker(testService(t), &fakePublisher{}, 1))
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestSchedulerPublishesOnSchedule(t *testing.T) {
	pub := &fakePublisher{}
	s, err := NewScheduler(context.Background(), "@every 1s", NewReportWorker(testService(t), pub, 2))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	s.RunNow()
	if pub.count() != 12 {
		t.Fatalf("RunNow published %d, want 12", pub.count())
	}

	s.Start()
	defer s.Stop()
	deadline := time.Now().Add(3 * time.Second)
	for pub.count() < 24 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduled run never published, count=%d", pub.count())
		}
		time.Sleep(50 * time.Millisecond)
	}
}
