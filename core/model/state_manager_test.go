package model

import (
	"sync"
	"testing"
)

func TestStateManagerLifecycle(t *testing.T) {
	sm := NewStateManager()

	if sm.IsFitted() {
		t.Error("new StateManager should not be fitted")
	}
	if err := sm.RequireFitted(); err == nil {
		t.Error("RequireFitted() should fail before SetFitted")
	}

	sm.SetFitted()
	sm.SetDimensions(3, 100)

	if !sm.IsFitted() {
		t.Error("expected fitted state after SetFitted")
	}
	if err := sm.RequireFitted(); err != nil {
		t.Errorf("RequireFitted() error = %v", err)
	}

	nFeatures, nSamples := sm.GetDimensions()
	if nFeatures != 3 || nSamples != 100 {
		t.Errorf("GetDimensions() = (%d, %d), want (3, 100)", nFeatures, nSamples)
	}

	sm.Reset()
	if sm.IsFitted() {
		t.Error("expected unfitted state after Reset")
	}
	nFeatures, nSamples = sm.GetDimensions()
	if nFeatures != 0 || nSamples != 0 {
		t.Errorf("GetDimensions() after Reset = (%d, %d), want (0, 0)", nFeatures, nSamples)
	}
}

func TestStateManagerConcurrentAccess(t *testing.T) {
	sm := NewStateManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sm.SetFitted()
			sm.SetDimensions(4, 1000)
		}()
		go func() {
			defer wg.Done()
			_ = sm.IsFitted()
			_, _ = sm.GetDimensions()
		}()
	}
	wg.Wait()

	if !sm.IsFitted() {
		t.Error("expected fitted state")
	}
}

func TestBaseEstimator(t *testing.T) {
	var e BaseEstimator

	if e.IsFitted() {
		t.Error("zero BaseEstimator should not be fitted")
	}
	e.SetFitted()
	if !e.IsFitted() {
		t.Error("expected fitted state after SetFitted")
	}
	e.Reset()
	if e.IsFitted() {
		t.Error("expected unfitted state after Reset")
	}
}
