package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"go.trai.ch/zerr"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/ui/detail"
	"github.com/nhle/plant-care/internal/ui/myplants"
)

// plantSavedMsg is sent after a create, update or watering round trip.
type plantSavedMsg struct {
	plantID string
	text    string
	err     error
}

// openDetail shows id, recording the view in the recently viewed cache.
func (m *Model) openDetail(id string) tea.Cmd {
	if m.user == nil {
		return m.navigate(ViewDetail, &pending{view: ViewDetail, plantID: id})
	}
	m.previousView = m.currentView
	m.currentView = ViewDetail
	m.detail.SetLoading(true)
	return m.loadDetail(id)
}

// loadDetail fetches the plant from the API, falling back to the local
// mirror when the API cannot be reached, and returns it with the other
// recently viewed plants.
func (m Model) loadDetail(id string) tea.Cmd {
	svc := m.deps.API
	s := m.deps.Store
	tracker := m.deps.Tracker
	log := m.deps.Logger
	return func() tea.Msg {
		ctx := context.Background()

		p, err := svc.GetPlant(ctx, id)
		if err != nil {
			if errors.Is(err, api.ErrNotFound) || api.IsAuthError(err) {
				return detail.DetailLoadedMsg{Err: err}
			}
			local, lerr := s.GetPlantByID(ctx, id)
			if lerr != nil {
				return detail.DetailLoadedMsg{Err: zerr.With(zerr.Wrap(err, "loading plant"), "plant_id", id)}
			}
			log.Warn().Err(err).Str("plant_id", id).Msg("showing mirrored plant")
			p = local
		}

		if tracker == nil {
			return detail.DetailLoadedMsg{Plant: p}
		}
		items, err := tracker.RecordView(ctx, p.ID, p)
		if err != nil {
			// The cache is best effort; the detail page still renders.
			log.Warn().Err(err).Str("plant_id", p.ID).Msg("recording recent view failed")
			items, _ = tracker.LoadAll(ctx)
		}
		return detail.DetailLoadedMsg{Plant: p, Others: decodeRecent(recent.Others(items, p.ID))}
	}
}

// decodeRecent turns cached snapshots back into plants, skipping any that
// no longer decode.
func decodeRecent(items []recent.Item) []model.Plant {
	out := make([]model.Plant, 0, len(items))
	for _, it := range items {
		p, err := recent.Decode[model.Plant](it)
		if err != nil {
			continue
		}
		if p.ID == "" {
			p.ID = it.ID
		}
		out = append(out, p)
	}
	return out
}

func (m *Model) handleDetailAction(msg detail.ActionMsg) tea.Cmd {
	p := m.detail.Plant()
	if p == nil || p.ID != msg.PlantID {
		return nil
	}
	switch msg.Action {
	case detail.ActionEdit:
		return m.startEdit(*p)
	case detail.ActionWater:
		return m.waterPlant(*p)
	case detail.ActionDelete:
		m.previousView = ViewDetail
		m.currentView = ViewMine
		return tea.Batch(m.myPlants.Reload(), m.myPlants.ConfirmDelete(*p))
	}
	return nil
}

// startCreate opens the form for a new plant owned by the signed-in user.
func (m *Model) startCreate() tea.Cmd {
	if m.user == nil {
		return m.navigate(ViewForm, &pending{view: ViewForm})
	}
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m.form.StartCreate(model.Plant{OwnerName: m.user.Name, OwnerEmail: m.user.Email})
}

// startEdit opens the form for p.
func (m *Model) startEdit(p model.Plant) tea.Cmd {
	if p.ID == "" {
		return nil
	}
	if m.user == nil {
		return m.navigate(ViewForm, &pending{view: ViewForm, plant: &p})
	}
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m.form.StartEdit(p)
}

// savePlant sends p to the API and mirrors the result locally. done, when
// set, replaces the success message.
func (m Model) savePlant(p model.Plant, edit bool, done string) tea.Cmd {
	svc := m.deps.API
	s := m.deps.Store
	tracker := m.deps.Tracker
	log := m.deps.Logger
	return func() tea.Msg {
		ctx := context.Background()
		if edit {
			err := svc.UpdatePlant(ctx, p)
			switch {
			case errors.Is(err, api.ErrNotModified):
				return plantSavedMsg{plantID: p.ID, text: "No changes to save"}
			case err != nil:
				return plantSavedMsg{err: zerr.With(zerr.Wrap(err, "updating plant"), "plant_id", p.ID)}
			}
		} else {
			id, err := svc.CreatePlant(ctx, p)
			if err != nil {
				return plantSavedMsg{err: zerr.Wrap(err, "adding plant")}
			}
			p.ID = id
		}

		// CreatePlant and UpdatePlant submit a prepared copy; mirror the
		// same canonical form.
		if err := p.PrepareForSubmission(); err == nil {
			if err := s.UpsertPlants(ctx, []model.Plant{p}); err != nil {
				return plantSavedMsg{err: zerr.Wrap(err, "mirroring plant")}
			}
		}
		if edit && tracker != nil {
			refreshRecent(ctx, tracker, p, log)
		}

		if done == "" {
			verb := "Added"
			if edit {
				verb = "Updated"
			}
			done = fmt.Sprintf("%s %s", verb, p.PlantName)
		}
		return plantSavedMsg{plantID: p.ID, text: done}
	}
}

// refreshRecent replaces a stale snapshot of p in the recently viewed cache
// without moving it to the front.
func refreshRecent(ctx context.Context, tracker *recent.Tracker, p model.Plant, log zerolog.Logger) {
	if _, err := tracker.Refresh(ctx, p.ID, p); err != nil {
		log.Warn().Err(err).Str("plant_id", p.ID).Msg("refreshing recent snapshot failed")
	}
}

// waterPlant records that p was watered today.
func (m Model) waterPlant(p model.Plant) tea.Cmd {
	p.LastWateredDate = schedule.FormatDate(schedule.Today(m.deps.Now))
	p.Recompute()
	next := p.NextWateringDate
	if next == "" {
		next = "unknown"
	}
	return m.savePlant(p, true, fmt.Sprintf("Watered %s, next watering %s", p.PlantName, next))
}

// afterDelete drops the deleted plant from the recently viewed cache.
func (m Model) afterDelete(msg myplants.PlantDeletedMsg) tea.Cmd {
	if msg.Err != nil || m.deps.Tracker == nil {
		return nil
	}
	tracker := m.deps.Tracker
	return func() tea.Msg {
		if _, err := tracker.RemoveItem(context.Background(), msg.PlantID); err != nil {
			return noticeMsg{text: err.Error(), isErr: true}
		}
		return nil
	}
}

// setDarkMode applies and persists the display preference.
func (m *Model) setDarkMode(dark bool) tea.Cmd {
	m.prefs = m.prefs.Toggled()
	m.prefs.DarkMode = dark
	m.prefs.Apply()
	prefs := m.prefs
	s := m.deps.Store
	return func() tea.Msg {
		if err := prefs.Save(context.Background(), s); err != nil {
			return noticeMsg{text: err.Error(), isErr: true}
		}
		return noticeMsg{text: prefs.Label() + " mode"}
	}
}

// logout clears the session and leaves private views.
func (m *Model) logout() tea.Cmd {
	if m.deps.Sessions != nil {
		if err := m.deps.Sessions.Clear(); err != nil {
			m.notice = noticeMsg{text: err.Error(), isErr: true}
			return nil
		}
	}
	m.setUser(nil)
	m.notice = noticeMsg{text: "Signed out"}
	if m.currentView.private() {
		m.currentView = ViewList
	}
	return m.plantList.LoadPlants()
}

// checkDueNow runs the watering check for today outside the schedule.
func (m Model) checkDueNow() tea.Cmd {
	p := m.deps.Poller
	if p == nil {
		return nil
	}
	now := m.deps.Now
	return func() tea.Msg {
		return p.CheckDue(context.Background(), schedule.Today(now))
	}
}

// clearRecent empties the recently viewed cache.
func (m Model) clearRecent() tea.Cmd {
	tracker := m.deps.Tracker
	if tracker == nil {
		return nil
	}
	return func() tea.Msg {
		if err := tracker.Clear(context.Background()); err != nil {
			return noticeMsg{text: err.Error(), isErr: true}
		}
		return noticeMsg{text: "Recently viewed list cleared"}
	}
}
