package scheduler

import (
	"errors"
	"testing"

	"github.com/ternarybob/arbor"
)

func newTestScheduler(t *testing.T) *Service {
	t.Helper()
	service := NewService(arbor.NewLogger()).(*Service)
	t.Cleanup(func() {
		_ = service.Stop()
	})
	return service
}

func TestRegisterJobAndStatus(t *testing.T) {
	service := newTestScheduler(t)

	err := service.RegisterJob("retention_purge", "0 30 2 * * *", "Purges assessments past retention", func() error {
		return nil
	})
	if err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	status, err := service.GetJobStatus("retention_purge")
	if err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}
	if status.Name != "retention_purge" {
		t.Errorf("expected name retention_purge, got %s", status.Name)
	}
	if status.Schedule != "0 30 2 * * *" {
		t.Errorf("expected schedule preserved, got %s", status.Schedule)
	}
	if status.LastRun != nil {
		t.Error("expected no last run before execution")
	}

	statuses := service.GetAllJobStatuses()
	if len(statuses) != 1 {
		t.Errorf("expected 1 status, got %d", len(statuses))
	}
}

func TestRegisterJobValidation(t *testing.T) {
	service := newTestScheduler(t)

	handler := func() error { return nil }

	if err := service.RegisterJob("bad", "not a cron", "", handler); err == nil {
		t.Error("expected error for malformed schedule")
	}
	if err := service.RegisterJob("too-frequent", "0 * * * * *", "", handler); err == nil {
		t.Error("expected error for every-minute schedule")
	}
	if err := service.RegisterJob("nil-handler", "0 30 2 * * *", "", nil); err == nil {
		t.Error("expected error for nil handler")
	}

	if err := service.RegisterJob("ok", "0 30 2 * * *", "", handler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}
	if err := service.RegisterJob("ok", "0 30 2 * * *", "", handler); err == nil {
		t.Error("expected error registering duplicate job name")
	}
}

func TestStartStop(t *testing.T) {
	service := newTestScheduler(t)

	if service.IsRunning() {
		t.Error("scheduler should not be running before Start")
	}
	if err := service.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !service.IsRunning() {
		t.Error("scheduler should be running after Start")
	}
	if err := service.Start(); err == nil {
		t.Error("expected error starting an already-running scheduler")
	}
	if err := service.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if service.IsRunning() {
		t.Error("scheduler should not be running after Stop")
	}
	if err := service.Stop(); err != nil {
		t.Errorf("Stop on stopped scheduler should be a no-op, got: %v", err)
	}
}

func TestExecuteJobTracksOutcome(t *testing.T) {
	service := newTestScheduler(t)

	calls := 0
	err := service.RegisterJob("flaky", "0 30 2 * * *", "", func() error {
		calls++
		if calls == 1 {
			return errors.New("first run fails")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	service.executeJob("flaky")
	status, err := service.GetJobStatus("flaky")
	if err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}
	if status.LastError != "first run fails" {
		t.Errorf("expected last error recorded, got %q", status.LastError)
	}
	if status.LastRun == nil {
		t.Error("expected last run recorded after failed execution")
	}

	service.executeJob("flaky")
	status, err = service.GetJobStatus("flaky")
	if err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}
	if status.LastError != "" {
		t.Errorf("expected last error cleared after success, got %q", status.LastError)
	}
	if calls != 2 {
		t.Errorf("expected handler called twice, got %d", calls)
	}
}

func TestExecuteJobRecoversPanic(t *testing.T) {
	service := newTestScheduler(t)

	err := service.RegisterJob("panicky", "0 30 2 * * *", "", func() error {
		panic("job exploded")
	})
	if err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	// Must not crash the test process
	service.executeJob("panicky")

	status, err := service.GetJobStatus("panicky")
	if err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}
	if status.LastError == "" {
		t.Error("expected panic recorded as last error")
	}
	if status.IsRunning {
		t.Error("job should not be marked running after panic")
	}
}
