// internal/superio/session_test.go
package superio_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/superio-serial/internal/superio"
	"github.com/tamzrod/superio-serial/internal/superio/siotest"
)

// ---- helpers ----

type ioCall struct {
	out  bool
	port uint16
	v    uint8
}

// recordingIO records raw port traffic and answers every read with 0.
type recordingIO struct {
	calls []ioCall
}

func (r *recordingIO) Inb(port uint16) (uint8, error) {
	r.calls = append(r.calls, ioCall{port: port})
	return 0, nil
}

func (r *recordingIO) Outb(port uint16, v uint8) error {
	r.calls = append(r.calls, ioCall{out: true, port: port, v: v})
	return nil
}

func newMailbox(t *testing.T, io superio.PortIO, lock superio.Locker) *superio.Mailbox {
	t.Helper()
	mb, err := superio.New(superio.Config{
		IO:        io,
		Lock:      lock,
		Handshake: superio.ITEHandshake,
	})
	require.NoError(t, err)
	return mb
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}

	_, err := superio.New(superio.Config{Lock: lock, Handshake: superio.ITEHandshake})
	assert.Error(t, err)

	_, err = superio.New(superio.Config{IO: chip, Handshake: superio.ITEHandshake})
	assert.Error(t, err)

	_, err = superio.New(superio.Config{IO: chip, Lock: lock})
	assert.Error(t, err)

	_, err = superio.New(superio.Config{IO: chip, Lock: lock, Handshake: superio.ITEHandshake, LockWait: -time.Second})
	assert.Error(t, err)
}

func TestOpen_HandshakeSequence(t *testing.T) {
	io := &recordingIO{}
	mb := newMailbox(t, io, &siotest.Lock{})

	s := mb.Session()
	require.NoError(t, s.Open(context.Background()))
	assert.True(t, s.IsOpen())

	want := []ioCall{
		{out: true, port: superio.AddrPort, v: 0x02},
		{out: true, port: superio.DataPort, v: 0x02},
		{out: true, port: superio.AddrPort, v: 0x87},
		{out: true, port: superio.AddrPort, v: 0x01},
		{out: true, port: superio.AddrPort, v: 0x55},
		{out: true, port: superio.AddrPort, v: 0x55},
	}
	assert.Equal(t, want, io.calls)
}

func TestRegisterAccess(t *testing.T) {
	io := &recordingIO{}
	mb := newMailbox(t, io, &siotest.Lock{})
	s := mb.Session()
	require.NoError(t, s.Open(context.Background()))
	io.calls = nil

	_, err := s.ReadReg(0x30)
	require.NoError(t, err)
	require.NoError(t, s.WriteReg(0xF0, 0x46))
	require.NoError(t, s.SelectDevice(0x0B))

	want := []ioCall{
		{out: true, port: superio.AddrPort, v: 0x30},
		{port: superio.DataPort},
		{out: true, port: superio.AddrPort, v: 0xF0},
		{out: true, port: superio.DataPort, v: 0x46},
		{out: true, port: superio.AddrPort, v: superio.RegLDN},
		{out: true, port: superio.DataPort, v: 0x0B},
	}
	assert.Equal(t, want, io.calls)
}

func TestOpen_EntersConfigMode(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}
	mb := newMailbox(t, chip, lock)

	s := mb.Session()
	require.NoError(t, s.Open(context.Background()))
	assert.True(t, chip.ConfigMode())
	assert.True(t, lock.Held())

	require.NoError(t, s.Close())
	assert.False(t, chip.ConfigMode())
	assert.False(t, lock.Held())
	assert.False(t, s.IsOpen())
}

func TestOpen_ReentrantIsNoop(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}
	mb := newMailbox(t, chip, lock)

	s := mb.Session()
	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Open(context.Background()))

	assert.Equal(t, 1, chip.Enters())
	assert.Equal(t, 1, lock.Acquired())

	// A single close ends the session: no nesting depth is kept.
	require.NoError(t, s.Close())
	assert.False(t, lock.Held())
	assert.False(t, chip.ConfigMode())
}

func TestClose_Idempotent(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}
	mb := newMailbox(t, chip, lock)

	s := mb.Session()
	require.NoError(t, s.Open(context.Background()))
	exitsAfterOpen := chip.Exits()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	// Every close writes the exit pair; the lock is released once.
	assert.Equal(t, exitsAfterOpen+3, chip.Exits())
	assert.Equal(t, 1, lock.Released())
}

func TestClose_NeverOpened(t *testing.T) {
	io := &recordingIO{}
	mb := newMailbox(t, io, &siotest.Lock{})

	require.NoError(t, mb.Session().Close())
	assert.Equal(t, []ioCall{
		{out: true, port: superio.AddrPort, v: 0x02},
		{out: true, port: superio.DataPort, v: 0x02},
	}, io.calls)
}

func TestOpen_BusyWhenHeldElsewhere(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}
	mb := newMailbox(t, chip, lock)

	release := lock.Hold()

	err := mb.Session().Open(context.Background())
	assert.ErrorIs(t, err, superio.ErrBusy)
	assert.Equal(t, 0, chip.Enters(), "no handshake without the lock")

	release()
	require.NoError(t, mb.Do(context.Background(), func(*superio.Session) error { return nil }))
}

func TestOpen_TwoSessionsExclude(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	mb := newMailbox(t, chip, &siotest.Lock{})

	a := mb.Session()
	b := mb.Session()

	require.NoError(t, a.Open(context.Background()))
	assert.ErrorIs(t, b.Open(context.Background()), superio.ErrBusy)

	require.NoError(t, a.Close())
	require.NoError(t, b.Open(context.Background()))
	require.NoError(t, b.Close())
}

func TestOpen_ConcurrentNeverOverlap(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	mb := newMailbox(t, chip, &siotest.Lock{})

	var inside atomic.Int32
	var overlap atomic.Bool
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := mb.Do(context.Background(), func(*superio.Session) error {
					if inside.Add(1) > 1 {
						overlap.Store(true)
					}
					inside.Add(-1)
					return nil
				})
				if err != nil && !errors.Is(err, superio.ErrBusy) {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "two sessions were open at once")
}

func TestOpen_WaitsForRelease(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}
	mb, err := superio.New(superio.Config{
		IO:           chip,
		Lock:         lock,
		Handshake:    superio.ITEHandshake,
		LockWait:     time.Second,
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)

	release := lock.Hold()
	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	s := mb.Session()
	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Close())
}

func TestOpen_WaitTimesOut(t *testing.T) {
	lock := &siotest.Lock{}
	mb, err := superio.New(superio.Config{
		IO:           siotest.NewChip(0x8786),
		Lock:         lock,
		Handshake:    superio.ITEHandshake,
		LockWait:     20 * time.Millisecond,
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)

	defer lock.Hold()()

	assert.ErrorIs(t, mb.Session().Open(context.Background()), superio.ErrBusy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = mb.Session().Open(ctx)
	assert.ErrorIs(t, err, superio.ErrBusy)
}

func TestOpen_IOFailureReleasesLock(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	chip.FailOut = errors.New("port write failed")
	lock := &siotest.Lock{}
	mb := newMailbox(t, chip, lock)

	s := mb.Session()
	assert.Error(t, s.Open(context.Background()))
	assert.False(t, s.IsOpen())
	assert.False(t, lock.Held())
}

func TestDo_ClosesOnError(t *testing.T) {
	chip := siotest.NewChip(0x8786)
	lock := &siotest.Lock{}
	mb := newMailbox(t, chip, lock)

	boom := errors.New("boom")
	err := mb.Do(context.Background(), func(*superio.Session) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, lock.Held())
	assert.False(t, chip.ConfigMode())
}

func TestReadChipID(t *testing.T) {
	tests := []struct {
		name string
		id   uint16
	}{
		{"it8786", 0x8786},
		{"foreign", 0x1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chip := siotest.NewChip(tt.id)
			lock := &siotest.Lock{}
			mb := newMailbox(t, chip, lock)

			id, err := mb.ReadChipID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.False(t, lock.Held(), "chip id session must not persist")
			assert.False(t, chip.ConfigMode())

			acc := chip.Accesses()
			require.Len(t, acc, 3) // high, low, exit write
			assert.Equal(t, superio.RegChipIDH, acc[0].Reg)
			assert.Equal(t, superio.RegChipIDL, acc[1].Reg)
		})
	}
}
