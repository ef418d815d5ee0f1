// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countingWorker records how many times Run was entered and blocks until
// its context is cancelled.
type countingWorker struct {
	runCount atomic.Int32
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.runCount.Add(1)
	<-ctx.Done()
	return nil
}

// failingWorker returns err immediately.
type failingWorker struct {
	err error
}

func (w *failingWorker) Run(context.Context) error {
	return w.err
}

func TestWorkers_Run_AllWorkersAreStarted(t *testing.T) {
	w1, w2, w3 := &countingWorker{}, &countingWorker{}, &countingWorker{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewWorkers(w1, w2, w3).Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for w1.runCount.Load()+w2.runCount.Load()+w3.runCount.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("workers were not started")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
	for i, w := range []*countingWorker{w1, w2, w3} {
		if got := w.runCount.Load(); got != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, got)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	if err := NewWorkers().Run(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestWorkers_Run_FirstErrorStopsOthers(t *testing.T) {
	boom := errors.New("boom")
	blocked := &countingWorker{}

	err := NewWorkers(blocked, &failingWorker{err: boom}).Run(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
}
