package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type MuteSweeper interface {
	SweepExpired(now time.Time) int
}

type WindowSweeper interface {
	RemoveStaleWindows(now time.Time) int
}

// Sweeper периодически убирает истёкшие мьюты и пустые окна сообщений.
// Уборка только гигиена памяти, ленивые проверки по сроку остаются
// авторитетными.
type Sweeper struct {
	scheduler *gocron.Scheduler
	mutes     MuteSweeper
	windows   WindowSweeper
	logger    *slog.Logger
	interval  time.Duration
}

func NewSweeper(mutes MuteSweeper, windows WindowSweeper, interval time.Duration, logger *slog.Logger) *Sweeper {
	scheduler := gocron.NewScheduler(time.UTC)

	return &Sweeper{
		scheduler: scheduler,
		mutes:     mutes,
		windows:   windows,
		logger:    logger,
		interval:  interval,
	}
}

func (s *Sweeper) Start() {
	s.logger.Info("Запуск уборщика",
		"interval", s.interval.String(),
	)

	_, err := s.scheduler.Every(s.interval).Do(func() {
		now := time.Now()

		mutesRemoved := s.mutes.SweepExpired(now)
		windowsRemoved := s.windows.RemoveStaleWindows(now)

		if mutesRemoved > 0 || windowsRemoved > 0 {
			s.logger.Info("Уборка завершена",
				"mutes_removed", mutesRemoved,
				"windows_removed", windowsRemoved,
			)
		}
	})

	if err != nil {
		s.logger.Error("Ошибка при настройке уборщика",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *Sweeper) Stop() {
	s.logger.Info("Остановка уборщика")
	s.scheduler.Stop()
}
