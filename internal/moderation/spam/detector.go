package spam

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	windowDuration     = 60 * time.Second
	rateLimitThreshold = 5
	maxWindowEntries   = 10
	capsMinLength      = 10
)

const (
	ReasonRateLimit = "rate_limit"
	ReasonCapsSpam  = "caps_spam"
)

type Result struct {
	IsSpam bool
	Reason string
}

type entry struct {
	text string
	time time.Time
}

type userWindow struct {
	mu      sync.Mutex
	entries []entry
	removed bool
}

// Detector хранит по одному окну сообщений на пользователя (общему для
// всех групп) и проверяет rate-limit и капс-эвристику.
type Detector struct {
	windows map[int64]*userWindow
	mu      sync.RWMutex
}

func NewDetector() *Detector {
	return &Detector{
		windows: make(map[int64]*userWindow),
	}
}

// lockWindow возвращает окно пользователя с уже захваченным мьютексом.
// Свипер помечает удаляемые окна, поэтому гонка с ним здесь приводит к
// повторному чтению карты, а не к записи в отцепленное окно.
func (d *Detector) lockWindow(userID int64) *userWindow {
	for {
		w := d.window(userID)

		w.mu.Lock()

		if !w.removed {
			return w
		}

		w.mu.Unlock()
	}
}

func (d *Detector) window(userID int64) *userWindow {
	d.mu.RLock()
	w, exists := d.windows[userID]
	d.mu.RUnlock()

	if exists {
		return w
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if w, exists := d.windows[userID]; exists {
		return w
	}

	w = &userWindow{}
	d.windows[userID] = w

	return w
}

// Check классифицирует сообщение. Порядок фиксированный: сначала
// rate-limit, затем капс; оба пути возвращаются до записи сообщения в
// окно, поэтому спам не пополняет историю пользователя.
func (d *Detector) Check(userID int64, text string, now time.Time) Result {
	w := d.lockWindow(userID)
	defer w.mu.Unlock()

	recent := 0

	for _, e := range w.entries {
		if now.Sub(e.time) < windowDuration {
			recent++
		}
	}

	if recent >= rateLimitThreshold {
		return Result{IsSpam: true, Reason: ReasonRateLimit}
	}

	if text == strings.ToUpper(text) && utf8.RuneCountInString(text) > capsMinLength {
		return Result{IsSpam: true, Reason: ReasonCapsSpam}
	}

	w.entries = append(w.entries, entry{text: text, time: now})
	if len(w.entries) > maxWindowEntries {
		w.entries = w.entries[len(w.entries)-maxWindowEntries:]
	}

	return Result{}
}

// RemoveStaleWindows удаляет окна, в которых не осталось ни одного
// сообщения моложе скользящего окна.
func (d *Detector) RemoveStaleWindows(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0

	for userID, w := range d.windows {
		w.mu.Lock()
		stale := true

		for _, e := range w.entries {
			if now.Sub(e.time) < windowDuration {
				stale = false
				break
			}
		}

		if stale {
			w.removed = true

			delete(d.windows, userID)

			removed++
		}
		w.mu.Unlock()
	}

	return removed
}
