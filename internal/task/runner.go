package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrAlreadyStarted Runner 只能启动一次
var ErrAlreadyStarted = errors.New("任务调度器已启动")

// Func 周期任务，ctx 在 Stop 时取消
type Func func(ctx context.Context) error

// Task 一个命名的周期任务
type Task struct {
	Name     string
	Interval time.Duration
	Run      Func
	// RunOnStart 为 true 时启动后立即执行一次
	RunOnStart bool
}

// every 固定间隔调度，支持亚秒级间隔（cron.Every 会取整到秒）
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// cronLogger 将 cron 内部日志转给 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Runner 周期任务调度器
// 生命周期与进程一致：Start 启动全部任务，Stop 取消并等待全部退出
type Runner struct {
	logger *zap.Logger

	mu      sync.Mutex
	tasks   []Task
	cron    *cron.Cron
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRunner 创建调度器
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Register 注册任务，须在 Start 之前调用
func (r *Runner) Register(t Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, t)
}

// Start 按各自间隔调度全部任务
// 同一任务上一次未结束时跳过本次触发（含 RunOnStart 的首次执行）
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)

	r.cron = cron.New(cron.WithLogger(cronLogger{s: r.logger.Sugar()}))

	scheduled := 0
	for _, t := range r.tasks {
		if t.Interval <= 0 || t.Run == nil {
			r.logger.Warn("忽略无效的周期任务", zap.String("task", t.Name))
			continue
		}
		job := r.exclusive(ctx, t)
		r.cron.Schedule(every(t.Interval), cron.FuncJob(job))
		if t.RunOnStart {
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				job()
			}()
		}
		scheduled++
	}

	r.cron.Start()
	r.logger.Info("周期任务已启动", zap.Int("count", scheduled))
	return nil
}

// Stop 取消全部任务并等待退出，可重复调用
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, c := r.cancel, r.cron
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}
	r.wg.Wait()
}

// exclusive 包装单个任务：启动时的首次执行与定时触发共用一把锁，
// 上一次未结束时跳过本次
func (r *Runner) exclusive(ctx context.Context, t Task) func() {
	var mu sync.Mutex
	return func() {
		if !mu.TryLock() {
			r.logger.Debug("上次执行未结束，跳过本次", zap.String("task", t.Name))
			return
		}
		defer mu.Unlock()
		r.runOnce(ctx, t)
	}
}

// runOnce 单次执行，panic 与错误只记录日志，不中断后续调度
func (r *Runner) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("周期任务 panic", zap.String("task", t.Name), zap.Any("panic", rec))
		}
	}()

	if err := t.Run(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("周期任务执行失败", zap.String("task", t.Name), zap.Error(err))
	}
}
