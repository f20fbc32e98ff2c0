package engine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/showbridge/midirelay/internal/validate"
	"github.com/showbridge/midirelay/sdk/contracts"
)

// reloadTriggers reads the persisted trigger list and atomically replaces the
// armed set. Triggers with an unknown command or action type stay in storage
// but are left inert.
func (r *Relay) reloadTriggers() error {
	stored, err := r.loadStoredTriggers()
	if err != nil {
		return err
	}

	armed := make([]contracts.Trigger, 0, len(stored))
	for _, t := range stored {
		_, cmdOK := contracts.ParseCommandType(t.MidiCommand)
		_, actOK := contracts.ParseActionType(t.ActionType)
		if !cmdOK || !actOK {
			r.logger.Warn("trigger is inert and will never fire",
				r.logger.Field().String("id", t.ID),
				r.logger.Field().String("midicommand", t.MidiCommand),
				r.logger.Field().String("actiontype", t.ActionType))
			continue
		}
		armed = append(armed, t)
	}

	r.trigMu.Lock()
	r.armed = armed
	r.trigMu.Unlock()
	return nil
}

func (r *Relay) loadStoredTriggers() ([]contracts.Trigger, error) {
	var stored []contracts.Trigger
	if err := r.store.Get(settingTriggers, &stored); err != nil {
		if errors.Is(err, contracts.ErrSettingNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return stored, nil
}

func (r *Relay) saveTriggers(list []contracts.Trigger) error {
	if err := r.store.Set(settingTriggers, list); err != nil {
		return fmt.Errorf("persist triggers: %w", err)
	}
	return r.reloadTriggers()
}

// armedTriggers returns the current armed set for matching.
func (r *Relay) armedTriggers() []contracts.Trigger {
	r.trigMu.RLock()
	defer r.trigMu.RUnlock()
	return r.armed
}

// Triggers reloads the persisted rule set and returns it, inert rules
// included.
func (r *Relay) Triggers() ([]contracts.Trigger, error) {
	stored, err := r.loadStoredTriggers()
	if err != nil {
		return nil, err
	}
	if err := r.reloadTriggers(); err != nil {
		return nil, err
	}
	return stored, nil
}

// AddTrigger validates the rule, assigns it an id and persists it.
func (r *Relay) AddTrigger(t contracts.Trigger) (contracts.Trigger, error) {
	if err := validate.Trigger(t); err != nil {
		return contracts.Trigger{}, err
	}

	t.ID = uuid.NewString()
	stored, err := r.loadStoredTriggers()
	if err != nil {
		return contracts.Trigger{}, err
	}
	if err := r.saveTriggers(append(stored, t)); err != nil {
		return contracts.Trigger{}, err
	}
	r.logger.Info("trigger added", r.logger.Field().String("id", t.ID))
	return t, nil
}

// UpdateTrigger replaces the stored rule with the same id. The id itself is
// immutable.
func (r *Relay) UpdateTrigger(t contracts.Trigger) error {
	if t.ID == "" {
		return ErrTriggerNotFound
	}
	if err := validate.Trigger(t); err != nil {
		return err
	}

	stored, err := r.loadStoredTriggers()
	if err != nil {
		return err
	}
	for i := range stored {
		if stored[i].ID == t.ID {
			stored[i] = t
			return r.saveTriggers(stored)
		}
	}
	return fmt.Errorf("%w: %s", ErrTriggerNotFound, t.ID)
}

// DeleteTrigger removes the stored rule by id.
func (r *Relay) DeleteTrigger(id string) error {
	stored, err := r.loadStoredTriggers()
	if err != nil {
		return err
	}
	kept := stored[:0]
	found := false
	for _, t := range stored {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrTriggerNotFound, id)
	}
	if err := r.saveTriggers(kept); err != nil {
		return err
	}
	r.logger.Info("trigger deleted", r.logger.Field().String("id", id))
	return nil
}

// Profiles lists the names of saved trigger snapshots.
func (r *Relay) Profiles() ([]string, error) {
	profiles, err := r.loadProfiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveProfile snapshots the current trigger list under the given name,
// overwriting any previous snapshot.
func (r *Relay) SaveProfile(name string) error {
	stored, err := r.loadStoredTriggers()
	if err != nil {
		return err
	}
	profiles, err := r.loadProfiles()
	if err != nil {
		return err
	}
	profiles[name] = stored
	return r.store.Set(settingProfiles, profiles)
}

// LoadProfile replaces the active trigger list with a saved snapshot.
func (r *Relay) LoadProfile(name string) error {
	profiles, err := r.loadProfiles()
	if err != nil {
		return err
	}
	snapshot, ok := profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return r.saveTriggers(snapshot)
}

// DeleteProfile removes a saved snapshot.
func (r *Relay) DeleteProfile(name string) error {
	profiles, err := r.loadProfiles()
	if err != nil {
		return err
	}
	if _, ok := profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	delete(profiles, name)
	return r.store.Set(settingProfiles, profiles)
}

func (r *Relay) loadProfiles() (map[string][]contracts.Trigger, error) {
	profiles := make(map[string][]contracts.Trigger)
	if err := r.store.Get(settingProfiles, &profiles); err != nil && !errors.Is(err, contracts.ErrSettingNotFound) {
		return nil, err
	}
	if profiles == nil {
		profiles = make(map[string][]contracts.Trigger)
	}
	return profiles, nil
}

// matches reports whether a trigger's criteria accept an event. Predicates
// short-circuit in a fixed order: command, port, channel, note, velocity,
// controller, value.
func matches(t contracts.Trigger, ev contracts.MidiEvent) bool {
	if !strings.EqualFold(t.MidiCommand, string(ev.Type)) {
		return false
	}
	if t.MidiPort != "" && t.MidiPort != contracts.Wildcard && t.MidiPort != ev.Port {
		return false
	}
	if !criterionMatches(t.Channel, int(ev.Channel)) {
		return false
	}
	if isNoteEvent(ev.Type) && !criterionMatches(t.Note, int(ev.Note)) {
		return false
	}
	if !criterionMatches(t.Velocity, int(ev.Velocity)) {
		return false
	}
	if ev.Type == contracts.CommandControlChange && !criterionMatches(t.Controller, int(ev.Controller)) {
		return false
	}
	if !criterionMatches(t.Value, ev.Value) {
		return false
	}
	return true
}

// criterionMatches applies one numeric criterion. Absent and wildcard both
// match anything; an unparseable criterion matches nothing.
func criterionMatches(criterion string, actual int) bool {
	criterion = strings.TrimSpace(criterion)
	if criterion == "" || criterion == contracts.Wildcard {
		return true
	}
	n, err := strconv.Atoi(criterion)
	return err == nil && n == actual
}

func isNoteEvent(t contracts.CommandType) bool {
	return t == contracts.CommandNoteOn || t == contracts.CommandNoteOff
}
