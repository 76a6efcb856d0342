package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PippinModels/commercial-pricing-app/internal/form"
)

func TestSessionStore_CreateGet(t *testing.T) {
	st := NewSessionStore(time.Hour)
	s := st.Create()
	require.NotEmpty(t, s.ID)

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, form.StateIdle, got.State)

	_, ok = st.Get("missing")
	assert.False(t, ok)
}

func TestSessionStore_UpdateKeepsSessionOnError(t *testing.T) {
	st := NewSessionStore(time.Hour)
	s := st.Create()

	got, ok, err := st.Update(s.ID, func(in form.Session) (form.Session, error) {
		in.Notice = &form.Notice{Level: form.LevelError, Message: "x"}
		return in, errors.New("boom")
	})
	require.True(t, ok)
	require.Error(t, err)
	assert.Equal(t, "x", got.Notice.Message)

	stored, _ := st.Get(s.ID)
	assert.Equal(t, "x", stored.Notice.Message)

	_, ok, err = st.Update("missing", func(in form.Session) (form.Session, error) { return in, nil })
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestSessionStore_Expiry(t *testing.T) {
	st := NewSessionStore(time.Minute)
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	a := st.Create()
	b := st.Create()

	now = now.Add(45 * time.Second)
	_, ok, _ := st.Update(b.ID, func(in form.Session) (form.Session, error) { return in, nil })
	require.True(t, ok)

	now = now.Add(30 * time.Second)
	_, ok = st.Get(a.ID)
	assert.False(t, ok)
	_, ok = st.Get(b.ID)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 0, st.Len())
}

func TestSessionStore_NoTTL(t *testing.T) {
	st := NewSessionStore(0)
	s := st.Create()
	st.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	assert.Equal(t, 0, st.Sweep())
	_, ok := st.Get(s.ID)
	assert.True(t, ok)
}

func TestSessionStore_SerializesUpdates(t *testing.T) {
	st := NewSessionStore(time.Hour)
	s := st.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Update(s.ID, func(in form.Session) (form.Session, error) { //nolint:errcheck
				in.Key.MappedType += "x"
				return in, nil
			})
		}()
	}
	wg.Wait()

	got, _ := st.Get(s.ID)
	assert.Len(t, got.Key.MappedType, 50)
}

func TestSessionStore_Run(t *testing.T) {
	st := NewSessionStore(time.Millisecond)
	st.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- st.Run(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return st.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
