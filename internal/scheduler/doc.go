// Package scheduler закрывает брошенные сессии.
//
// Сессия в статусе IN_PROGRESS, не обновлявшаяся дольше SESSION_TTL,
// переводится в EXPIRED. Очистка запускается по cron-расписанию
// SWEEP_CRON и обрабатывает сессии пачками по SWEEP_BATCH.
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Sweeper:    player,
//	    Leader:     scheduler.NewAdvisoryLock(pool), // для PostgreSQL
//	    CronExpr:   cfg.SweepCron,
//	    SessionTTL: cfg.SessionTTL,
//	    BatchSize:  cfg.SweepBatch,
//	    Logger:     logger,
//	})
//	if err != nil {
//	    return err
//	}
//	err = sched.Run(ctx)
//
// При нескольких экземплярах с PostgreSQL очистку выполняет только
// лидер, удерживающий pg_try_advisory_lock.
package scheduler
