package fan

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/blauberg/internal/protocol"
)

// fastVerify keeps verification tests quick
var fastVerify = &VerificationOptions{
	MaxRetries:    2,
	InitialDelay:  0,
	RetryDelay:    time.Millisecond,
	MaxRetryDelay: time.Millisecond,
}

// statefulFan answers like a fan holding state. Writes are applied unless
// frozen; reads report every held value.
type statefulFan struct {
	t      *testing.T
	state  protocol.Params
	frozen bool
	writes int
}

func (s *statefulFan) transport() *fakeTransport {
	return &fakeTransport{respond: func(cmd []byte) ([]byte, error) {
		fn, data, _ := parseCommand(s.t, cmd, DefaultPassword)
		if fn == protocol.FuncReadWrite {
			s.writes++
			if !s.frozen {
				for id, v := range protocol.DecodeBlock(data) {
					s.state[id] = v
				}
			}
		}
		return buildResponse(fn, protocol.EncodeBlock(s.state), false), nil
	}}
}

func TestWriteAndVerify(t *testing.T) {
	fan := &statefulFan{t: t, state: protocol.Params{0x0001: protocol.Known(0), 0x0002: protocol.Known(1)}}
	c := newTestClient(t, fan.transport())

	result := c.WriteAndVerify(context.Background(), protocol.Params{
		0x0001: protocol.Known(1),
		0x0002: protocol.Known(3),
	}, fastVerify)

	if !result.Success || result.Error != nil {
		t.Fatalf("WriteAndVerify() = %+v", result)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if v, _ := result.Actual.Get(0x0002); v != 3 {
		t.Errorf("read back 0x0002 = %d, want 3", v)
	}
}

func TestVerifyParamsMismatch(t *testing.T) {
	fan := &statefulFan{t: t, state: protocol.Params{0x0001: protocol.Known(0)}, frozen: true}
	c := newTestClient(t, fan.transport())

	result := c.WriteAndVerify(context.Background(), protocol.Params{0x0001: protocol.Known(1)}, fastVerify)

	if result.Success {
		t.Fatal("verification succeeded against a fan that ignores writes")
	}
	if result.Attempts != fastVerify.MaxRetries+1 {
		t.Errorf("Attempts = %d, want %d", result.Attempts, fastVerify.MaxRetries+1)
	}
	if len(result.Mismatches) != 1 || result.Error == nil {
		t.Errorf("Mismatches = %v, Error = %v", result.Mismatches, result.Error)
	}
}

func TestVerifyParamsNoAnswer(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})

	result := c.VerifyParams(context.Background(), protocol.Params{0x0001: protocol.Known(1)}, fastVerify)
	if result.Success {
		t.Fatal("verification succeeded without an answer")
	}
	want := "0x0001: no value returned"
	if len(result.Mismatches) != 1 || result.Mismatches[0] != want {
		t.Errorf("Mismatches = %v, want [%s]", result.Mismatches, want)
	}
}

func TestVerifyParamsCancelled(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.VerifyParams(ctx, protocol.Params{0x0001: protocol.Known(1)}, &VerificationOptions{InitialDelay: time.Second})
	if result.Success || result.Error == nil || result.Attempts != 0 {
		t.Errorf("VerifyParams() on a cancelled context = %+v", result)
	}
}

func TestFormatMismatches(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "none"},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "2 mismatches: a; b"},
	}
	for _, tt := range tests {
		if got := formatMismatches(tt.in); got != tt.want {
			t.Errorf("formatMismatches(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRollbackSnapshots(t *testing.T) {
	fan := &statefulFan{t: t, state: protocol.Params{0x0001: protocol.Known(1), 0x0002: protocol.Known(2)}}
	c := newTestClient(t, fan.transport())
	rm := NewRollbackManager(c)

	if rm.GetLatestSnapshot() != nil {
		t.Fatal("new manager has a snapshot")
	}
	for i := 0; i < 12; i++ {
		if _, err := rm.SaveSnapshot(context.Background(), "test", 0x0001); err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
	}
	if n := len(rm.GetSnapshots()); n != 10 {
		t.Errorf("kept %d snapshots, want 10", n)
	}
	rm.ClearSnapshots()
	if len(rm.GetSnapshots()) != 0 {
		t.Error("ClearSnapshots() left snapshots")
	}
	if result := rm.RollbackToLatest(context.Background(), fastVerify); result.Error == nil {
		t.Error("RollbackToLatest() without snapshots succeeded")
	}
}

func TestSaveSnapshotNoAnswer(t *testing.T) {
	rm := NewRollbackManager(newTestClient(t, &fakeTransport{}))
	if _, err := rm.SaveSnapshot(context.Background(), "test", 0x0001); err != ErrNoAnswer {
		t.Errorf("SaveSnapshot() error = %v, want ErrNoAnswer", err)
	}
}

func TestSaveSnapshotKeepsRequestedIDs(t *testing.T) {
	// The fan reports every held value, not only the ones asked for
	fan := &statefulFan{t: t, state: protocol.Params{0x0001: protocol.Known(1), 0x0044: protocol.Known(80)}}
	rm := NewRollbackManager(newTestClient(t, fan.transport()))

	snap, err := rm.SaveSnapshot(context.Background(), "before rate change", 0x0044)
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if got := snap.Params.IDs(); len(got) != 1 || got[0] != 0x0044 {
		t.Errorf("snapshot ids = %v, want [0x0044]", got)
	}
}

func TestRollbackLeavesOtherParams(t *testing.T) {
	fan := &statefulFan{t: t, state: protocol.Params{0x0001: protocol.Known(1), 0x0044: protocol.Known(80)}}
	tr := fan.transport()
	// The first write is clamped and someone switches the fan off meanwhile
	store := tr.respond
	tr.respond = func(cmd []byte) ([]byte, error) {
		out, err := store(cmd)
		if fan.writes == 1 {
			fan.state[0x0044] = protocol.Known(150)
			fan.state[0x0001] = protocol.Known(0)
		}
		return out, err
	}
	rm := NewRollbackManager(newTestClient(t, tr))

	result, rollback := rm.WriteWithRollback(context.Background(), protocol.Params{0x0044: protocol.Known(200)}, fastVerify)
	if result.Success || rollback == nil || !rollback.Success {
		t.Fatalf("WriteWithRollback() = %+v, rollback %+v", result, rollback)
	}
	if v, _ := fan.state.Get(0x0044); v != 80 {
		t.Errorf("fan 0x0044 after rollback = %d, want 80", v)
	}
	if v, _ := fan.state.Get(0x0001); v != 0 {
		t.Errorf("fan 0x0001 after rollback = %d, want 0 (not part of the write)", v)
	}
}

func TestWriteWithRollback(t *testing.T) {
	fan := &statefulFan{t: t, state: protocol.Params{0x0001: protocol.Known(1), 0x0044: protocol.Known(80)}}
	c := newTestClient(t, fan.transport())
	rm := NewRollbackManager(c)

	result, rollback := rm.WriteWithRollback(context.Background(), protocol.Params{0x0044: protocol.Known(200)}, fastVerify)
	if !result.Success || rollback != nil {
		t.Fatalf("WriteWithRollback() = %+v, rollback %+v", result, rollback)
	}
	if v, _ := fan.state.Get(0x0044); v != 200 {
		t.Errorf("fan 0x0044 = %d, want 200", v)
	}
	if snap := rm.GetLatestSnapshot(); snap == nil || !snap.Params.Equal(protocol.Params{0x0044: protocol.Known(80)}) {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestWriteWithRollbackRestores(t *testing.T) {
	fan := &statefulFan{t: t, state: protocol.Params{0x0044: protocol.Known(80)}}
	tr := fan.transport()
	// The fan stores the write but reports a clamped value, so the
	// read-back never matches.
	store := tr.respond
	tr.respond = func(cmd []byte) ([]byte, error) {
		out, err := store(cmd)
		if v, _ := fan.state.Get(0x0044); v > 150 {
			fan.state[0x0044] = protocol.Known(150)
		}
		return out, err
	}
	c := newTestClient(t, tr)
	rm := NewRollbackManager(c)

	result, rollback := rm.WriteWithRollback(context.Background(), protocol.Params{0x0044: protocol.Known(200)}, fastVerify)
	if result.Success {
		t.Fatal("write verified although the fan clamps the value")
	}
	if rollback == nil || !rollback.Success {
		t.Fatalf("rollback = %+v", rollback)
	}
	if v, _ := fan.state.Get(0x0044); v != 80 {
		t.Errorf("fan 0x0044 after rollback = %d, want 80", v)
	}
}
