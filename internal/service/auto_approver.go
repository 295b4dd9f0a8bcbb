package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/25Devmaker/coursehub/config"
	"github.com/25Devmaker/coursehub/internal/repository"
	pkgerrors "github.com/25Devmaker/coursehub/pkg/errors"
	"github.com/25Devmaker/coursehub/pkg/metrics"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
	"github.com/25Devmaker/coursehub/pkg/tracing"
)

// ErrApproverAlreadyStarted 每个进程只允许启动一个后台扫描
var ErrApproverAlreadyStarted = errors.New("自动审批任务已启动")

const sweepLockName = "enrollment:auto-approve"

// Locker 跨进程互斥锁（由 Redis 实现），多实例部署时避免重复扫描
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, name, token string) error
}

// SweepResult 单次扫描结果
type SweepResult struct {
	Scanned  int
	Approved int
	Skipped  int // 已被管理员或定时器处理
}

// AutoApprover 后台自动审批任务：周期性通过超时未处理的选课申请
type AutoApprover struct {
	repo        *repository.Repository
	enrollments EnrollmentService
	clock       scheduler.Clock
	locker      Locker // 可为 nil
	interval    time.Duration
	after       time.Duration
	lockTTL     time.Duration
	batchSize   int
	logger      *zap.Logger
	started     atomic.Bool
}

// NewAutoApprover 创建后台自动审批任务
func NewAutoApprover(
	cfg *config.EnrollmentConfig,
	repo *repository.Repository,
	enrollments EnrollmentService,
	clock scheduler.Clock,
	locker Locker,
	logger *zap.Logger,
) *AutoApprover {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	return &AutoApprover{
		repo:        repo,
		enrollments: enrollments,
		clock:       clock,
		locker:      locker,
		interval:    cfg.SweepInterval,
		after:       cfg.AutoApproveAfter,
		lockTTL:     cfg.SweepLockTTL,
		batchSize:   cfg.SweepBatchSize,
		logger:      logger.Named("auto_approver"),
	}
}

// Start 立即执行一次扫描，之后按固定周期扫描，直到 ctx 取消
// 重复调用返回 ErrApproverAlreadyStarted
func (a *AutoApprover) Start(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrApproverAlreadyStarted
	}

	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("自动审批任务已启动",
		zap.Duration("interval", a.interval),
		zap.Duration("auto_approve_after", a.after),
	)

	a.wake(ctx)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("自动审批任务已停止")
			return nil
		case <-ticker.C():
			a.wake(ctx)
		}
	}
}

// wake 执行一次扫描，错误仅记录，下个周期重试
func (a *AutoApprover) wake(ctx context.Context) {
	res, err := a.SweepOnce(ctx)
	if err != nil {
		a.logger.Error("自动审批扫描失败，等待下个周期重试", zap.Error(err))
		return
	}
	if res.Approved > 0 || res.Skipped > 0 {
		a.logger.Info("自动审批扫描完成",
			zap.Int("scanned", res.Scanned),
			zap.Int("approved", res.Approved),
			zap.Int("skipped", res.Skipped),
		)
	}
}

// SweepOnce 通过所有 enrolled_at <= now - after 的待审批申请，按 batchSize 分页直到取尽
// 存储不可用时放弃本次扫描并返回错误
func (a *AutoApprover) SweepOnce(ctx context.Context) (res SweepResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "enrollment.sweep")
	defer func() {
		span.SetAttributes(
			attribute.Int("sweep.scanned", res.Scanned),
			attribute.Int("sweep.approved", res.Approved),
		)
		tracing.RecordError(span, err)
		span.End()
	}()

	if a.locker != nil {
		token, ok, lockErr := a.locker.TryLock(ctx, sweepLockName, a.lockTTL)
		switch {
		case lockErr != nil:
			// 锁服务不可用时照常扫描，比较交换保证结果正确
			a.logger.Warn("获取扫描锁失败，继续执行", zap.Error(lockErr))
		case !ok:
			metrics.AutoApproveSweeps.WithLabelValues("skipped").Inc()
			return res, nil
		default:
			defer func() {
				if err := a.locker.Unlock(context.WithoutCancel(ctx), sweepLockName, token); err != nil {
					a.logger.Warn("释放扫描锁失败", zap.Error(err))
				}
			}()
		}
	}

	// 截止时间在本次扫描内固定，待处理集合有限；处理过的行离开 pending，下一页自然前移
	cutoff := a.clock.Now().Add(-a.after)
	for ctx.Err() == nil {
		pending, err := a.repo.Enrollment.ListStalePending(ctx, cutoff, a.batchSize)
		if err != nil {
			metrics.AutoApproveSweeps.WithLabelValues("failed").Inc()
			return res, storeUnavailable(err)
		}
		res.Scanned += len(pending)

		progressed := 0
		for i := range pending {
			if ctx.Err() != nil {
				break
			}
			id := pending[i].EnrollmentID
			err := a.enrollments.AutoApprove(ctx, id)
			switch {
			case err == nil:
				res.Approved++
				progressed++
			case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrEnrollmentNotFound):
				res.Skipped++
				progressed++
			case errors.Is(err, pkgerrors.ErrStoreUnavailable):
				metrics.AutoApproveSweeps.WithLabelValues("failed").Inc()
				return res, err
			default:
				a.logger.Warn("自动审批单条失败", zap.String("enrollment_id", id), zap.Error(err))
			}
		}

		// 未满一页说明已取尽；整页都失败时留到下个周期，避免反复读取同一页
		if a.batchSize <= 0 || len(pending) < a.batchSize || progressed == 0 {
			break
		}
	}

	metrics.AutoApproveSweeps.WithLabelValues("ok").Inc()
	return res, nil
}
