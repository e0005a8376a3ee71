package promo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/storage"
)

type recordingSender struct {
	sent    []messaging.Outbound
	failFor string
}

func (s *recordingSender) SendText(_ context.Context, out messaging.Outbound) error {
	if s.failFor != "" && out.To == s.failFor {
		return errors.New("blocked number")
	}
	s.sent = append(s.sent, out)
	return nil
}

func newStatusStore(t *testing.T, records ...storage.StatusRecord) *storage.StatusStore {
	t.Helper()
	store, err := storage.NewStatusStore(filepath.Join(t.TempDir(), "status.json"))
	require.NoError(t, err)
	require.NoError(t, store.Replace(records))
	return store
}

func TestAnnounceTargetsOnlyUninterested(t *testing.T) {
	store := newStatusStore(t,
		storage.StatusRecord{Name: "Meera", Phone: "+91 11111 11111", Status: "no"},
		storage.StatusRecord{Name: "Kiran", Phone: "912222222222", Status: "yes"},
	)
	sender := &recordingSender{}
	n := NewNotifier(store, sender, nil)

	sent := n.Announce(context.Background(), []string{"913333333333"})
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "911111111111", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "Meera")
}

func TestAnnounceSkipsWhenNoNewPhones(t *testing.T) {
	store := newStatusStore(t, storage.StatusRecord{Name: "Meera", Phone: "911111111111", Status: "no"})
	sender := &recordingSender{}
	n := NewNotifier(store, sender, nil)

	assert.Equal(t, 0, n.Announce(context.Background(), nil))
	assert.Empty(t, sender.sent)
}

func TestAnnounceContinuesPastSendFailure(t *testing.T) {
	store := newStatusStore(t,
		storage.StatusRecord{Name: "A", Phone: "911111111111", Status: "no"},
		storage.StatusRecord{Name: "B", Phone: "912222222222", Status: "no"},
	)
	sender := &recordingSender{failFor: "911111111111"}
	n := NewNotifier(store, sender, nil)

	sent := n.Announce(context.Background(), []string{"919999999999"})
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "912222222222", sender.sent[0].To)
}
