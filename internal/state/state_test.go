package state

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestComboToggleOncePerHold(t *testing.T) {
	a := New()

	if tr := a.ApplyCombo(true, t0); tr != Activated {
		t.Fatalf("Expected first combo press to activate, got %s", tr)
	}
	for i := 0; i < 50; i++ {
		if tr := a.ApplyCombo(true, t0.Add(time.Duration(i)*10*time.Millisecond)); tr != NoChange {
			t.Fatalf("tick %d: held combo changed state: %s", i, tr)
		}
	}
	if active, _ := a.Mode(); !active {
		t.Fatal("Expected state to remain active while combo held")
	}

	if tr := a.ApplyCombo(false, t0); tr != NoChange {
		t.Errorf("Expected release to change nothing, got %s", tr)
	}
	if a.Snapshot().ToggleGuard {
		t.Error("Expected guard to be cleared after release")
	}
	if tr := a.ApplyCombo(true, t0); tr != Deactivated {
		t.Errorf("Expected second press to deactivate, got %s", tr)
	}
}

func TestDeactivateClosesOverlay(t *testing.T) {
	a := New()
	opened, activated, err := a.OpenOverlay(t0)
	if err != nil || !opened || !activated {
		t.Fatalf("Expected open from inactive to open and activate, got %v %v", opened, activated)
	}

	if tr := a.Toggle(t0); tr != Deactivated {
		t.Fatalf("Expected toggle to deactivate, got %s", tr)
	}
	s := a.Snapshot()
	if s.Active || s.OverlayOpen {
		t.Errorf("Expected inactive and closed, got %+v", s)
	}
}

func TestOverlayImpliesActive(t *testing.T) {
	a := New()
	a.OpenOverlay(t0)
	if opened, activated, _ := a.OpenOverlay(t0); opened || activated {
		t.Errorf("Expected second open to be a no-op, got %v %v", opened, activated)
	}
	a.ApplyCombo(true, t0)
	a.ApplyCombo(false, t0)
	a.ApplyCombo(true, t0)

	s := a.Snapshot()
	if s.OverlayOpen && !s.Active {
		t.Errorf("overlay open while inactive: %+v", s)
	}
	if a.CloseOverlay() != s.OverlayOpen {
		t.Error("CloseOverlay reported wrong previous state")
	}
}

func TestLastToggleRecorded(t *testing.T) {
	a := New()
	if a.Snapshot().LastToggleAt != nil {
		t.Error("Expected no toggle time before the first toggle")
	}
	a.Toggle(t0)
	got := a.Snapshot().LastToggleAt
	if got == nil || !got.Equal(t0) {
		t.Errorf("Expected last toggle %v, got %v", t0, got)
	}
}

func TestSetActive(t *testing.T) {
	a := New()
	if tr := a.SetActive(false, t0); tr != NoChange {
		t.Errorf("Expected no change, got %s", tr)
	}
	if tr := a.SetActive(true, t0); tr != Activated {
		t.Errorf("Expected activation, got %s", tr)
	}
}

func TestCaptureTargetSkipsOwnWindow(t *testing.T) {
	a := New()
	a.SetOwnWindow(100)

	if a.CaptureTarget(100) {
		t.Error("Expected own window not to be captured")
	}
	if a.CaptureTarget(0) {
		t.Error("Expected empty window not to be captured")
	}
	if !a.CaptureTarget(200) || a.Target() != 200 {
		t.Errorf("Expected target 200, got %d", a.Target())
	}
}

func TestCaptureTargetKeptWhileOverlayOpen(t *testing.T) {
	a := New()
	a.CaptureTarget(200)
	a.OpenOverlay(t0)

	// overlay window is foreground but has not said hello yet
	if a.CaptureTarget(100) {
		t.Error("Expected capture to be skipped while the overlay is open")
	}
	if a.Target() != 200 {
		t.Errorf("Expected target to stay 200, got %d", a.Target())
	}

	a.CloseOverlay()
	if !a.CaptureTarget(300) || a.Target() != 300 {
		t.Errorf("Expected capture after close, got %d", a.Target())
	}
}

func TestDisableBlocksActivation(t *testing.T) {
	a := New()
	a.OpenOverlay(t0)

	if tr := a.Disable(t0); tr != Deactivated {
		t.Errorf("Expected disabling an active state to deactivate, got %s", tr)
	}
	if tr := a.Toggle(t0); tr != NoChange {
		t.Errorf("Expected toggle to be refused, got %s", tr)
	}
	if tr := a.SetActive(true, t0); tr != NoChange {
		t.Errorf("Expected SetActive to be refused, got %s", tr)
	}
	if tr := a.ApplyCombo(true, t0); tr != NoChange {
		t.Errorf("Expected combo to be refused, got %s", tr)
	}
	if _, _, err := a.OpenOverlay(t0); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}

	s := a.Snapshot()
	if s.Active || s.OverlayOpen || !s.Disabled {
		t.Errorf("Expected disabled and inactive, got %+v", s)
	}
	if tr := a.Disable(t0); tr != NoChange {
		t.Errorf("Expected second disable to be a no-op, got %s", tr)
	}
}

func TestReconcileFocus(t *testing.T) {
	a := New()
	a.SetOwnWindow(100)
	a.CaptureTarget(200)

	if w := a.ReconcileFocus(100); w != 200 {
		t.Errorf("Expected restore of 200 when own window is foreground, got %d", w)
	}
	if w := a.ReconcileFocus(200); w != 0 {
		t.Errorf("Expected nothing to do when target is foreground, got %d", w)
	}
	if w := a.ReconcileFocus(300); w != 0 {
		t.Errorf("Expected no restore for a third window, got %d", w)
	}
	if a.Target() != 300 {
		t.Errorf("Expected target to follow the user to 300, got %d", a.Target())
	}
	if w := a.ReconcileFocus(0); w != 0 || a.Target() != 300 {
		t.Errorf("Expected empty foreground to be ignored, got %d target %d", w, a.Target())
	}
}

func TestReconcileWithoutTarget(t *testing.T) {
	a := New()
	a.SetOwnWindow(100)
	if w := a.ReconcileFocus(100); w != 0 {
		t.Errorf("Expected no restore without a target, got %d", w)
	}
}

func TestConcurrentToggles(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	flips := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if a.ApplyCombo(true, t0) != NoChange {
				mu.Lock()
				flips++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if flips != 1 {
		t.Errorf("Expected exactly one flip within one guard window, got %d", flips)
	}
}
