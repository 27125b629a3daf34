package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunner_RunsPeriodically(t *testing.T) {
	var n int32
	r := NewRunner(zap.NewNop())
	r.Register(Task{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		},
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	r.Stop()

	if got := atomic.LoadInt32(&n); got < 2 {
		t.Errorf("期望至少执行 2 次，实际 %d", got)
	}
}

func TestRunner_StopCancelsAndWaits(t *testing.T) {
	var exited int32
	r := NewRunner(zap.NewNop())
	r.Register(Task{
		Name:       "blocking",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			atomic.StoreInt32(&exited, 1)
			return ctx.Err()
		},
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	r.Stop()

	if atomic.LoadInt32(&exited) != 1 {
		t.Error("Stop 返回时任务应已退出")
	}

	// 停止后不再执行
	r.Stop()
}

func TestRunner_NoRunAfterStop(t *testing.T) {
	var n int32
	r := NewRunner(zap.NewNop())
	r.Register(Task{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		},
	})
	_ = r.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	r.Stop()

	before := atomic.LoadInt32(&n)
	time.Sleep(30 * time.Millisecond)
	if after := atomic.LoadInt32(&n); after != before {
		t.Errorf("Stop 之后不应再执行，之前 %d 之后 %d", before, after)
	}
}

func TestRunner_ErrorsAndPanicsDoNotStopLoop(t *testing.T) {
	var n int32
	r := NewRunner(zap.NewNop())
	r.Register(Task{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			switch atomic.AddInt32(&n, 1) {
			case 1:
				return errors.New("boom")
			case 2:
				panic("boom")
			}
			return nil
		},
	})
	_ = r.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	r.Stop()

	if got := atomic.LoadInt32(&n); got < 3 {
		t.Errorf("错误与 panic 后应继续调度，实际执行 %d 次", got)
	}
}

func TestRunner_StartTwice(t *testing.T) {
	r := NewRunner(zap.NewNop())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("首次 Start 失败: %v", err)
	}
	defer r.Stop()
	if err := r.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("期望 ErrAlreadyStarted，实际 %v", err)
	}
}

func TestRunner_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	r := NewRunner(zap.NewNop())
	r.Register(Task{
		Name:       "wait",
		Interval:   time.Hour,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(done)
			return nil
		},
	})
	_ = r.Start(ctx)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("父 context 取消后任务应退出")
	}
	r.Stop()
}

func TestEvery_SubSecond(t *testing.T) {
	base := time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC)
	if got := every(250 * time.Millisecond).Next(base); !got.Equal(base.Add(250 * time.Millisecond)) {
		t.Errorf("期望保留亚秒间隔，实际: %v", got.Sub(base))
	}
}

func TestRunner_InvalidTaskIgnored(t *testing.T) {
	r := NewRunner(zap.NewNop())
	r.Register(Task{Name: "no-interval", Run: func(context.Context) error { return nil }})
	r.Register(Task{Name: "no-func", Interval: time.Millisecond})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("无效任务不应导致启动失败: %v", err)
	}
	r.Stop()
	r.Stop()
}

func TestRunner_RunOnStartDoesNotOverlapTicks(t *testing.T) {
	var running, maxRunning, runs int32
	r := NewRunner(zap.NewNop())
	r.Register(Task{
		Name:       "slow",
		Interval:   5 * time.Millisecond,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			defer atomic.AddInt32(&running, -1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			atomic.AddInt32(&runs, 1)
			select {
			case <-time.After(40 * time.Millisecond):
			case <-ctx.Done():
			}
			return nil
		},
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if m := atomic.LoadInt32(&maxRunning); m != 1 {
		t.Errorf("同一任务不应并发执行，最大并发 %d", m)
	}
	if atomic.LoadInt32(&runs) == 0 {
		t.Error("期望至少执行一次")
	}
}
