package shell

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestJobTable_AddAndPoll(t *testing.T) {
	jt := NewJobTable(10, nil)

	release := make(chan struct{})
	id, ok := jt.Add(4242, "sleep 10", func() error {
		<-release
		return nil
	})
	if !ok {
		t.Fatalf("Add reported not ok")
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}

	if lines := jt.Poll(); len(lines) != 0 {
		t.Fatalf("Poll before completion returned %v, want none", lines)
	}

	close(release)
	// give the wait goroutine a chance to close its done channel
	deadline := time.After(time.Second)
	for {
		lines := jt.Poll()
		if len(lines) == 1 {
			want := "[0] 4242 finished sleep 10"
			if lines[0] != want {
				t.Errorf("Poll() finish line = %q, want %q", lines[0], want)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job was never reaped")
		default:
		}
	}
}

func TestJobTable_CapacityDropsJob(t *testing.T) {
	jt := NewJobTable(1, nil)

	if _, ok := jt.Add(1, "first", func() error { return nil }); !ok {
		t.Fatalf("first Add should succeed")
	}
	if _, ok := jt.Add(2, "second", func() error { return nil }); ok {
		t.Errorf("second Add should be dropped at capacity 1")
	}
}

func TestJobTable_PrintsIDPidLabel(t *testing.T) {
	jt := NewJobTable(10, nil)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	jt.Add(99, "cat", func() error { <-release; return nil })

	var buf bytes.Buffer
	jt.Print(&buf)

	want := "[0] 99 cat\n"
	if buf.String() != want {
		t.Errorf("Print() = %q, want %q", buf.String(), want)
	}
}

func TestJobTable_PollReapsFailedJob(t *testing.T) {
	jt := NewJobTable(10, nil)
	wantErr := errors.New("exit status 1")
	jt.Add(7, "false", func() error { return wantErr })

	deadline := time.After(time.Second)
	for {
		lines := jt.Poll()
		if len(lines) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job was never reaped")
		default:
		}
	}
}
