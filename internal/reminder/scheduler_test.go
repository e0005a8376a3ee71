package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
)

type recordingSender struct {
	sent []messaging.Outbound
	err  error
}

func (s *recordingSender) SendText(_ context.Context, out messaging.Outbound) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, out)
	return nil
}

type nopPersister struct{}

func (nopPersister) Persist(context.Context, []appointments.Appointment) error { return nil }

func newStore(t *testing.T, appts ...appointments.Appointment) *appointments.Store {
	t.Helper()
	store := appointments.NewStore(nopPersister{}, nil)
	_, err := store.ImportMerge(context.Background(), appts, nil)
	require.NoError(t, err)
	return store
}

func TestCountdownFiresAtTriggerMinuteOnly(t *testing.T) {
	appt := appointments.Appointment{
		Name: "Ravi", Phone: "919876543210",
		Time: time.Date(2024, 3, 7, 16, 0, 0, 0, time.UTC),
	}
	sender := &recordingSender{}
	sched := NewScheduler(newStore(t, appt), sender, time.UTC, nil)

	// Three days ahead, at 11:30 sharp.
	sent := sched.ProcessTick(context.Background(), time.Date(2024, 3, 4, 11, 30, 0, 0, time.UTC))
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "3 days")
	assert.Contains(t, sender.sent[0].Body, "RESCHEDULE")

	// One minute later the rule no longer holds.
	sent = sched.ProcessTick(context.Background(), time.Date(2024, 3, 4, 11, 31, 0, 0, time.UTC))
	assert.Equal(t, 0, sent)
	assert.Len(t, sender.sent, 1)
}

func TestCountdownWindowBounds(t *testing.T) {
	tests := []struct {
		name     string
		apptDate time.Time
		want     int
	}{
		{"same day", time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), 0},
		{"one day ahead", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), 1},
		{"seven days ahead", time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC), 1},
		{"eight days ahead", time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), 0},
		{"in the past", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 0},
	}
	now := time.Date(2024, 3, 4, 11, 30, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			store := newStore(t, appointments.Appointment{Name: "A", Phone: "91", Time: tt.apptDate})
			sched := NewScheduler(store, sender, time.UTC, nil)
			assert.Equal(t, tt.want, sched.ProcessTick(context.Background(), now))
		})
	}
}

func TestNearTermFiresAtExactLeadMinute(t *testing.T) {
	appt := appointments.Appointment{
		Name: "Ravi", Phone: "919876543210",
		Time: time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC),
	}
	sender := &recordingSender{}
	sched := NewScheduler(newStore(t, appt), sender, time.UTC, nil)

	// Exactly five hours before, seconds ignored.
	sent := sched.ProcessTick(context.Background(), time.Date(2024, 3, 4, 14, 0, 42, 0, time.UTC))
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "07:00 PM")

	sent = sched.ProcessTick(context.Background(), time.Date(2024, 3, 4, 14, 1, 0, 0, time.UTC))
	assert.Equal(t, 0, sent)
}

func TestSendFailureDoesNotStopSweep(t *testing.T) {
	a := appointments.Appointment{Name: "A", Phone: "911", Time: time.Date(2024, 3, 6, 16, 0, 0, 0, time.UTC)}
	b := appointments.Appointment{Name: "B", Phone: "912", Time: time.Date(2024, 3, 6, 17, 0, 0, 0, time.UTC)}
	sender := &recordingSender{err: errors.New("gateway unreachable")}
	sched := NewScheduler(newStore(t, a, b), sender, time.UTC, nil)

	sent := sched.ProcessTick(context.Background(), time.Date(2024, 3, 4, 11, 30, 0, 0, time.UTC))
	assert.Equal(t, 0, sent)
	assert.Empty(t, sender.sent)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	sender := &recordingSender{}
	sched := NewScheduler(newStore(t), sender, time.UTC, nil).WithTick(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
