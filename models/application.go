// Package models holds the application state machine at the heart of the
// wizard: one mutable AppState, mutated only through the operations declared
// here, with every derived field (visa label, checklist, progress, summary)
// recomputed inside the same locked section so readers never observe a
// half-applied cascade.
package models

import (
	"context"
	"encoding/json"
	"math"
	"sync"

	apperrors "github.com/VisaTrek/visa-trek-backend/errors"
	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/rules"
	"github.com/VisaTrek/visa-trek-backend/store"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/google/uuid"
)

// DefaultNationality is the alpha-3 nationality pre-selected on a fresh
// application.
const DefaultNationality = "CHN"

// KeyRoot prefixes every persisted key so ClearCurrentApplication can tear
// the whole namespace down in one sweep.
const KeyRoot = "visatrek:"

const (
	keyApplications = KeyRoot + "applications"
	keyCurrentApp   = KeyRoot + "currentAppId"
)

func tripKey(appID string) string      { return KeyRoot + appID + ":trip.selections" }
func checklistKey(appID string) string { return KeyRoot + appID + ":checklist.state" }
func uploadsKey(appID string) string   { return KeyRoot + appID + ":uploads.meta" }
func overridesKey(appID string) string { return KeyRoot + appID + ":mapping.overrides" }

// appState is the single mutable state of the wizard. Only the current
// application's full substate is materialized; the rest live as persisted
// snapshots until loaded.
type appState struct {
	applications     []types.ApplicationMeta
	currentAppID     string
	trip             *types.TripSelections
	checklist        []types.ChecklistItem
	checklistState   types.ChecklistState
	uploads          []types.UploadMeta
	extraction       types.ExtractionResult
	mapping          []types.MappingItem
	mappingOverrides types.MappingOverrides
}

func freshSubstate(s *appState) {
	s.trip = nil
	s.checklist = []types.ChecklistItem{}
	s.checklistState = types.ChecklistState{}
	s.uploads = []types.UploadMeta{}
	s.extraction = types.ExtractionResult{}
	s.mapping = []types.MappingItem{}
	s.mappingOverrides = types.MappingOverrides{}
}

// ApplicationModel is the state machine for visa applications. All mutation
// funnels through its methods; the embedded mutex keeps the
// trip → label → checklist → progress → summary cascade atomic.
type ApplicationModel struct {
	mu     sync.Mutex
	engine *rules.Engine
	kv     store.KVStore
	state  appState
}

func NewApplicationModel(engine *rules.Engine, kv store.KVStore) *ApplicationModel {
	m := &ApplicationModel{
		engine: engine,
		kv:     kv,
	}
	freshSubstate(&m.state)
	return m
}

// Restore loads the persisted application list, current id, and the current
// application's substate from the KV store. Intended for startup; missing
// keys leave the initial empty state untouched.
func (m *ApplicationModel) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var apps []types.ApplicationMeta
	if m.readJSON(ctx, keyApplications, &apps) {
		m.state.applications = apps
	}
	var current string
	if m.readJSON(ctx, keyCurrentApp, &current) && current != "" {
		for _, a := range m.state.applications {
			if a.ID == current {
				m.state.currentAppID = current
				m.restoreSubstateLocked(ctx, current)
				break
			}
		}
	}
}

// CreateApplication initializes a fresh application with default trip
// selections, appends it to the application list, and makes it current.
func (m *ApplicationModel) CreateApplication(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	trip := &types.TripSelections{
		NationalityCode: DefaultNationality,
		Purpose:         types.PurposeTourist,
	}
	meta := types.ApplicationMeta{ID: id}

	m.state.applications = append(m.state.applications, meta)
	m.state.currentAppID = id
	freshSubstate(&m.state)
	m.state.trip = trip

	m.persistListLocked(ctx)
	m.persistJSON(ctx, tripKey(id), trip)

	logger.GetLogger().Infow("Application created", "applicationId", id)
	return id, nil
}

// LoadApplication makes the identified application current and restores its
// persisted substate. Loading the same id twice with no intervening mutation
// yields the same substate.
func (m *ApplicationModel) LoadApplication(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findMetaLocked(id) == nil {
		return apperrors.ApplicationNotFound(id)
	}

	m.state.currentAppID = id
	m.restoreSubstateLocked(ctx, id)
	m.persistJSON(ctx, keyCurrentApp, id)
	return nil
}

// DeleteApplication removes the application and its persisted snapshots. If
// it was current, the first remaining application becomes current.
func (m *ApplicationModel) DeleteApplication(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findMetaLocked(id) == nil {
		return apperrors.ApplicationNotFound(id)
	}

	remaining := make([]types.ApplicationMeta, 0, len(m.state.applications)-1)
	for _, a := range m.state.applications {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}
	m.state.applications = remaining
	m.deleteSnapshots(ctx, id)

	if m.state.currentAppID == id {
		if len(remaining) > 0 {
			m.state.currentAppID = remaining[0].ID
			m.restoreSubstateLocked(ctx, remaining[0].ID)
			m.persistJSON(ctx, keyCurrentApp, remaining[0].ID)
		} else {
			m.state.currentAppID = ""
			freshSubstate(&m.state)
			m.deleteKey(ctx, keyCurrentApp)
		}
	}

	m.persistListLocked(ctx)
	return nil
}

// DuplicateApplication clones the target application's summary and trip under
// a new id with progress reset to 0. The clone does not become current.
func (m *ApplicationModel) DuplicateApplication(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.findMetaLocked(id)
	if src == nil {
		return "", apperrors.ApplicationNotFound(id)
	}

	clone := *src
	clone.ID = uuid.NewString()
	clone.ProgressPct = 0
	m.state.applications = append(m.state.applications, clone)

	// Carry the trip snapshot over so loading the clone restores the same
	// selections. Checklist state, uploads, and overrides start clean.
	if raw, ok, err := m.kv.Get(ctx, tripKey(id)); err == nil && ok {
		if err := m.kv.Set(ctx, tripKey(clone.ID), raw, 0); err != nil {
			logger.GetLogger().Warnw("Failed to persist duplicated trip", "applicationId", clone.ID, "error", err)
		}
	}

	m.persistListLocked(ctx)
	return clone.ID, nil
}

// ClearCurrentApplication is store teardown: it resets the entire state
// machine to its initial empty state and deletes every persisted key.
func (m *ApplicationModel) ClearCurrentApplication(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.applications = nil
	m.state.currentAppID = ""
	freshSubstate(&m.state)

	if err := m.kv.DeletePrefix(ctx, KeyRoot); err != nil {
		logger.GetLogger().Errorw("Failed to clear persisted state", "error", err)
		return apperrors.Wrap(err, apperrors.ServerError, "failed to clear persisted state")
	}
	return nil
}

// UpdateTrip merges the patch into the current trip selections and runs the
// full derived-state cascade: destination area from the alpha-2 code, visa
// label from the area, checklist regeneration, progress against the surviving
// checklist state, and the summary mirror.
func (m *ApplicationModel) UpdateTrip(ctx context.Context, patch types.TripUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" {
		return apperrors.NoActiveApplication()
	}
	if patch.Purpose != nil && !patch.Purpose.IsValid() {
		return apperrors.ValidationFailed("Invalid purpose", "must be Tourist or Business")
	}

	trip := m.state.trip
	if trip == nil {
		trip = &types.TripSelections{
			NationalityCode: DefaultNationality,
			Purpose:         types.PurposeTourist,
		}
	}

	if patch.NationalityCode != nil {
		trip.NationalityCode = *patch.NationalityCode
	}
	if patch.Purpose != nil {
		trip.Purpose = *patch.Purpose
	}
	if patch.Dates != nil {
		trip.Dates = *patch.Dates
	}
	if patch.DestinationCountryAlpha2 != nil {
		trip.DestinationCountryAlpha2 = *patch.DestinationCountryAlpha2
	}

	// Derived fields always follow the destination country, never the patch.
	area, _ := rules.VisaAreaForDestination(trip.DestinationCountryAlpha2)
	trip.Destination = area
	label, _ := rules.VisaLabelFor(area)
	trip.VisaTypeLabel = label

	m.state.trip = trip
	m.state.checklist = m.engine.GenerateChecklist(label, trip.Dates)

	meta := m.findMetaLocked(m.state.currentAppID)
	meta.Destination = trip.Destination
	meta.VisaTypeLabel = trip.VisaTypeLabel
	meta.Purpose = trip.Purpose
	meta.Dates = trip.Dates
	meta.ProgressPct = calcProgress(m.state.checklist, m.state.checklistState)

	m.persistListLocked(ctx)
	m.persistJSON(ctx, tripKey(m.state.currentAppID), trip)
	return nil
}

// ToggleChecklistItem flips the completion flag for one checklist item id and
// recomputes progress. An id never toggled before flips from the implicit
// "not done" to done.
func (m *ApplicationModel) ToggleChecklistItem(ctx context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" {
		return apperrors.NoActiveApplication()
	}

	m.state.checklistState[itemID] = !m.state.checklistState[itemID]

	meta := m.findMetaLocked(m.state.currentAppID)
	meta.ProgressPct = calcProgress(m.state.checklist, m.state.checklistState)

	m.persistListLocked(ctx)
	m.persistJSON(ctx, checklistKey(m.state.currentAppID), m.state.checklistState)
	return nil
}

// SetUploads replaces the current application's upload metadata wholesale.
func (m *ApplicationModel) SetUploads(ctx context.Context, uploads []types.UploadMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" {
		return apperrors.NoActiveApplication()
	}
	if uploads == nil {
		uploads = []types.UploadMeta{}
	}
	m.state.uploads = uploads
	m.persistJSON(ctx, uploadsKey(m.state.currentAppID), uploads)
	return nil
}

// AddUpload appends one accepted upload to the current application.
func (m *ApplicationModel) AddUpload(ctx context.Context, upload types.UploadMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" {
		return apperrors.NoActiveApplication()
	}
	m.state.uploads = append(m.state.uploads, upload)
	m.persistJSON(ctx, uploadsKey(m.state.currentAppID), m.state.uploads)
	return nil
}

// SetExtractionFor stores the extraction pipeline's output, but only when the
// application it was started for is still current. A stale delivery is
// dropped with a log line; the state is left untouched.
func (m *ApplicationModel) SetExtractionFor(appID string, result types.ExtractionResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" || m.state.currentAppID != appID {
		logger.GetLogger().Infow("Dropping stale extraction result",
			"applicationId", appID, "currentApplicationId", m.state.currentAppID)
		return
	}
	m.state.extraction = result
}

// SetMappingFor stores the pipeline's field mapping with the same staleness
// guard as SetExtractionFor.
func (m *ApplicationModel) SetMappingFor(appID string, mapping []types.MappingItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" || m.state.currentAppID != appID {
		logger.GetLogger().Infow("Dropping stale field mapping",
			"applicationId", appID, "currentApplicationId", m.state.currentAppID)
		return
	}
	if mapping == nil {
		mapping = []types.MappingItem{}
	}
	m.state.mapping = mapping
}

// UpdateMappingValue records a user edit for one form field. Overrides always
// win over the mapping item's baked-in value.
func (m *ApplicationModel) UpdateMappingValue(ctx context.Context, formField, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.currentAppID == "" {
		return apperrors.NoActiveApplication()
	}
	m.state.mappingOverrides[formField] = value
	m.persistJSON(ctx, overridesKey(m.state.currentAppID), m.state.mappingOverrides)
	return nil
}

// CurrentAppID returns the id of the current application, or "" when the
// machine is in its empty state.
func (m *ApplicationModel) CurrentAppID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.currentAppID
}

// ListApplications returns a copy of the application summaries and the
// current id.
func (m *ApplicationModel) ListApplications() ([]types.ApplicationMeta, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apps := make([]types.ApplicationMeta, len(m.state.applications))
	copy(apps, m.state.applications)
	return apps, m.state.currentAppID
}

// Snapshot returns a consistent copy of the entire working state.
func (m *ApplicationModel) Snapshot() types.WorkingState {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := types.WorkingState{
		Applications:     make([]types.ApplicationMeta, len(m.state.applications)),
		CurrentAppID:     m.state.currentAppID,
		Checklist:        make([]types.ChecklistItem, len(m.state.checklist)),
		ChecklistState:   make(types.ChecklistState, len(m.state.checklistState)),
		Uploads:          make([]types.UploadMeta, len(m.state.uploads)),
		Extraction:       m.state.extraction,
		Mapping:          make([]types.MappingItem, len(m.state.mapping)),
		MappingOverrides: make(types.MappingOverrides, len(m.state.mappingOverrides)),
	}
	copy(snap.Applications, m.state.applications)
	copy(snap.Checklist, m.state.checklist)
	copy(snap.Uploads, m.state.uploads)
	copy(snap.Mapping, m.state.mapping)
	for k, v := range m.state.checklistState {
		snap.ChecklistState[k] = v
	}
	for k, v := range m.state.mappingOverrides {
		snap.MappingOverrides[k] = v
	}
	if m.state.trip != nil {
		trip := *m.state.trip
		snap.Trip = &trip
	}
	return snap
}

// MergedMapping returns the mapping items with user overrides applied.
func (m *ApplicationModel) MergedMapping() []types.MappingItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := make([]types.MappingItem, len(m.state.mapping))
	copy(merged, m.state.mapping)
	for i := range merged {
		if override, ok := m.state.mappingOverrides[merged[i].FormField]; ok {
			merged[i].Value = override
		}
	}
	return merged
}

// calcProgress computes checklist completion as a rounded integer percent.
// An item counts as done when the live state marks it or the item itself was
// generated done. An empty checklist reads as 0.
func calcProgress(checklist []types.ChecklistItem, state types.ChecklistState) int {
	if len(checklist) == 0 {
		return 0
	}
	done := 0
	for _, item := range checklist {
		if state[item.ID] || item.Done {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(checklist)) * 100))
}

func (m *ApplicationModel) findMetaLocked(id string) *types.ApplicationMeta {
	for i := range m.state.applications {
		if m.state.applications[i].ID == id {
			return &m.state.applications[i]
		}
	}
	return nil
}

// restoreSubstateLocked rebuilds the working substate for the given
// application from its persisted snapshots. Extraction and mapping are not
// persisted; they reset to empty and repopulate when the pipeline reruns.
func (m *ApplicationModel) restoreSubstateLocked(ctx context.Context, id string) {
	freshSubstate(&m.state)

	var trip types.TripSelections
	if m.readJSON(ctx, tripKey(id), &trip) {
		m.state.trip = &trip
	}
	var checklistState types.ChecklistState
	if m.readJSON(ctx, checklistKey(id), &checklistState) && checklistState != nil {
		m.state.checklistState = checklistState
	}
	var uploads []types.UploadMeta
	if m.readJSON(ctx, uploadsKey(id), &uploads) && uploads != nil {
		m.state.uploads = uploads
	}
	var overrides types.MappingOverrides
	if m.readJSON(ctx, overridesKey(id), &overrides) && overrides != nil {
		m.state.mappingOverrides = overrides
	}

	if m.state.trip != nil {
		m.state.checklist = m.engine.GenerateChecklist(m.state.trip.VisaTypeLabel, m.state.trip.Dates)
	}
}

func (m *ApplicationModel) deleteSnapshots(ctx context.Context, id string) {
	for _, key := range []string{tripKey(id), checklistKey(id), uploadsKey(id), overridesKey(id)} {
		m.deleteKey(ctx, key)
	}
}

func (m *ApplicationModel) persistListLocked(ctx context.Context) {
	m.persistJSON(ctx, keyApplications, m.state.applications)
	if m.state.currentAppID != "" {
		m.persistJSON(ctx, keyCurrentApp, m.state.currentAppID)
	}
}

// persistJSON snapshots a value to the KV store. Persistence is best effort:
// the in-memory state is authoritative and a storage failure must not fail
// the mutation.
func (m *ApplicationModel) persistJSON(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.GetLogger().Errorw("Failed to marshal state snapshot", "key", key, "error", err)
		return
	}
	if err := m.kv.Set(ctx, key, raw, 0); err != nil {
		logger.GetLogger().Warnw("Failed to persist state snapshot", "key", key, "error", err)
	}
}

func (m *ApplicationModel) readJSON(ctx context.Context, key string, v interface{}) bool {
	raw, ok, err := m.kv.Get(ctx, key)
	if err != nil {
		logger.GetLogger().Warnw("Failed to read state snapshot", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.GetLogger().Warnw("Corrupt state snapshot", "key", key, "error", err)
		return false
	}
	return true
}

func (m *ApplicationModel) deleteKey(ctx context.Context, key string) {
	if err := m.kv.Delete(ctx, key); err != nil {
		logger.GetLogger().Warnw("Failed to delete state snapshot", "key", key, "error", err)
	}
}
