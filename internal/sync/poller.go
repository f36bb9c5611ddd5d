package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/store"
)

// SyncState represents the current state of the plant mirror.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	}
	return "idle"
}

// SyncStatus holds the state of the last sync.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes.
type SyncResultMsg struct {
	Plants        []model.Plant
	Error         error
	AuthError     *AuthErrorMsg
	NewPlantCount int
}

// AuthErrorMsg is a tea.Msg sent when the API rejects the session.
type AuthErrorMsg struct {
	Message string
}

// DueCheckMsg is a tea.Msg sent after the watering check runs.
type DueCheckMsg struct {
	Day              string
	Due              []model.Plant
	NewNotifications int
	Error            error
}

// Reminder delivers watering reminders for plants due on day.
type Reminder interface {
	Remind(ctx context.Context, day time.Time, plants []model.Plant) error
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// cronParser accepts standard five-field specs, an optional seconds field
// and descriptors such as @daily.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Options configures a Poller.
type Options struct {
	Interval      time.Duration
	CheckSchedule string // cron spec; empty disables the scheduled check
	Location      *time.Location
	Reminder      Reminder
	Logger        zerolog.Logger
	Now           func() time.Time
}

// Poller keeps the local plant mirror in step with the API and runs the
// scheduled watering check.
type Poller struct {
	api      api.PlantService
	store    store.Store
	opts     Options
	status   SyncStatus
	resultCh chan tea.Msg
	trigger  chan struct{}
	stopCh   chan struct{}
	cron     *cron.Cron
	mu       gosync.Mutex
	running  bool
}

// New creates a Poller.
func New(svc api.PlantService, s store.Store, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 120 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		api:      svc,
		store:    s,
		opts:     opts,
		resultCh: make(chan tea.Msg, 16),
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// ValidateSchedule reports whether spec is a usable cron schedule.
func ValidateSchedule(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start launches the polling goroutine and the watering check schedule, and
// returns a command that delivers the first result to the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	if p.opts.CheckSchedule != "" {
		c := cron.New(cron.WithParser(cronParser), cron.WithLocation(p.opts.Location))
		_, err := c.AddFunc(p.opts.CheckSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()
			p.send(p.CheckDue(ctx, p.today()))
		})
		if err != nil {
			p.opts.Logger.Error().Err(err).Str("schedule", p.opts.CheckSchedule).Msg("watering check disabled")
		} else {
			c.Start()
			p.cron = c
		}
	}

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine and the schedule.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
	p.running = false
}

// RefreshAll triggers an immediate sync.
func (p *Poller) RefreshAll() tea.Cmd {
	select {
	case p.trigger <- struct{}{}:
	default:
		// A refresh is already pending.
	}
	return nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.syncAndSend()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.syncAndSend()
		case <-p.trigger:
			p.syncAndSend()
		}
	}
}

func (p *Poller) syncAndSend() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	p.send(p.SyncOnce(ctx))
}

// SyncOnce pulls every plant from the API and replaces the local mirror.
func (p *Poller) SyncOnce(ctx context.Context) SyncResultMsg {
	p.setStatus(SyncRunning, nil)

	plants, err := p.api.ListPlants(ctx)
	if err != nil {
		p.setStatus(SyncError, err)
		p.opts.Logger.Warn().Err(err).Msg("plant sync failed")

		if api.IsAuthError(err) {
			return SyncResultMsg{
				Error:     err,
				AuthError: &AuthErrorMsg{Message: "session expired. Press 'L' to sign in again."},
			}
		}
		return SyncResultMsg{Error: err}
	}

	existing, err := p.store.GetPlants(ctx, store.PlantFilter{})
	if err != nil {
		p.setStatus(SyncError, err)
		return SyncResultMsg{Error: err}
	}
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.ID] = true
	}
	newCount := 0
	for _, pl := range plants {
		if !known[pl.ID] {
			newCount++
		}
	}

	if err := p.store.ReplacePlants(ctx, plants); err != nil {
		p.setStatus(SyncError, err)
		p.opts.Logger.Error().Err(err).Msg("storing synced plants failed")
		return SyncResultMsg{Error: err}
	}

	p.setStatus(SyncIdle, nil)
	p.opts.Logger.Debug().Int("plants", len(plants)).Int("new", newCount).Msg("plants synced")
	return SyncResultMsg{Plants: plants, NewPlantCount: newCount}
}

// CheckDue records a notification for every mirrored plant due on or before
// day and hands them to the reminder, if one is configured.
func (p *Poller) CheckDue(ctx context.Context, day time.Time) DueCheckMsg {
	dayStr := schedule.FormatDate(day)
	msg := DueCheckMsg{Day: dayStr}

	due, err := p.store.GetPlants(ctx, store.PlantFilter{DueBy: &dayStr})
	if err != nil {
		msg.Error = err
		return msg
	}
	msg.Due = due

	var errs []error
	for _, pl := range due {
		text := fmt.Sprintf("Water %s today", pl.PlantName)
		if pl.Overdue(day) {
			text = fmt.Sprintf("%s is overdue for water (due %s)", pl.PlantName, pl.NextWateringDate)
		}
		created, err := p.store.CreateNotification(ctx, model.Notification{
			PlantID: pl.ID,
			Day:     dayStr,
			Message: text,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if created {
			msg.NewNotifications++
		}
	}

	if p.opts.Reminder != nil && len(due) > 0 && msg.NewNotifications > 0 {
		if err := p.opts.Reminder.Remind(ctx, day, due); err != nil {
			errs = append(errs, fmt.Errorf("sending reminders: %w", err))
		}
	}

	msg.Error = errors.Join(errs...)
	if msg.Error != nil {
		p.opts.Logger.Warn().Err(msg.Error).Str("day", dayStr).Msg("watering check incomplete")
	} else {
		p.opts.Logger.Info().Str("day", dayStr).Int("due", len(due)).Int("new", msg.NewNotifications).Msg("watering check done")
	}
	return msg
}

func (p *Poller) today() time.Time {
	return schedule.Today(func() time.Time { return p.opts.Now().In(p.opts.Location) })
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = p.opts.Now()
	}
}

// send delivers msg on the result channel without blocking.
func (p *Poller) send(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync or
// watering check result. Call it after handling each result to keep
// listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
