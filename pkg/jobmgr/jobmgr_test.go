package jobmgr

import (
	"context"
	"testing"
	"time"
)

func TestStartAsyncRejectsDuplicateName(t *testing.T) {
	m := NewManager(nil)
	defer m.StopAll()

	block := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}

	if err := m.StartAsync("sweep", block); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := m.StartAsync("sweep", block); err == nil {
		t.Error("duplicate name should be rejected")
	}
}

func TestStopCancelsJob(t *testing.T) {
	m := NewManager(nil)

	done := make(chan struct{})
	err := m.StartAsync("sweep", func(ctx context.Context) error {
		<-ctx.Done()
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := m.Stop("sweep"); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe cancellation")
	}

	if err := m.Stop("sweep"); err == nil {
		t.Error("stopping a stopped job should error")
	}
}

func TestListReportsActiveJobs(t *testing.T) {
	m := NewManager(nil)
	defer m.StopAll()

	block := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	m.StartAsync("b-job", block)
	m.StartAsync("a-job", block)

	got := m.List()
	if len(got) != 2 || got[0] != "a-job" || got[1] != "b-job" {
		t.Errorf("List = %v, want [a-job b-job]", got)
	}
}

func TestJobRemovesItselfOnCompletion(t *testing.T) {
	m := NewManager(nil)

	reported := make(chan string, 4)
	m.Reporter = func(s string) { reported <- s }

	m.StartAsync("once", func(ctx context.Context) error { return nil })

	deadline := time.Now().Add(2 * time.Second)
	for {
		select {
		case s := <-reported:
			if s != "done:once" {
				continue
			}
			// removal happens just after the report
			for time.Now().Before(deadline) {
				if len(m.List()) == 0 {
					return
				}
				time.Sleep(10 * time.Millisecond)
			}
			t.Fatal("completed job was not removed")
		case <-time.After(time.Until(deadline)):
			t.Fatal("job never reported completion")
		}
	}
}
