// Package savedsearch persists named, replayable filter-parameter sets and
// replays them through the same plan/executor path as live searches.
package savedsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"real-estate-marketplace/internal/apperr"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/query"
	"real-estate-marketplace/internal/search"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// arrayKeys are the parameter keys that may arrive as scalar, comma-joined
// string, or array, and are always stored as string arrays.
var arrayKeys = map[string]bool{
	"bedrooms":      true,
	"bathrooms":     true,
	"property_type": true,
}

// Store manages saved searches for users.
type Store struct {
	db       *gorm.DB
	executor *search.Executor
	logger   *slog.Logger
}

// NewStore creates a saved-search store.
func NewStore(db *gorm.DB, executor *search.Executor, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, executor: executor, logger: logger}
}

// Entry is a saved search plus its live refresh state as returned by List.
type Entry struct {
	models.SavedSearch
	Params        map[string][]string `json:"params"`
	HasNewResults bool                `json:"has_new_results"`
}

// Save persists a new saved search. The name must be unique among the
// user's active searches (trimmed comparison); array-shaped parameters are
// normalized before storage. The initial result count runs through the full
// search pipeline; a count failure degrades to 0 and is not fatal.
func (s *Store) Save(ctx context.Context, userID, name string, rawParams map[string]interface{}, frequency models.AlertFrequency, description string) (*models.SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("saved search name is required")
	}
	if frequency == "" {
		frequency = models.AlertNever
	}
	if !models.IsValidAlertFrequency(frequency) {
		return nil, apperr.Validation("unknown alert frequency %q", frequency)
	}

	var existing int64
	err := s.db.WithContext(ctx).Model(&models.SavedSearch{}).
		Where("user_id = ? AND active = ? AND name = ?", userID, true, name).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("saved search lookup: %w", err)
	}
	if existing > 0 {
		return nil, apperr.DuplicateName("an active saved search named %q already exists", name)
	}

	params := NormalizeParams(rawParams)
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	now := time.Now()
	saved := &models.SavedSearch{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           name,
		Description:    description,
		Params:         string(encoded),
		AlertFrequency: frequency,
		Active:         true,
		LastExecutedAt: &now,
	}

	// Initial count is best effort: a broken filter set must not block the save.
	if count, err := s.executor.Count(ctx, query.BuildPublicPlan(query.ParseFilterParams(params))); err != nil {
		s.logger.Warn("initial saved-search count failed",
			"component", "savedsearch", "user_id", userID, "error", err)
	} else {
		saved.LastResultCount = count
	}

	if err := s.db.WithContext(ctx).Create(saved).Error; err != nil {
		return nil, fmt.Errorf("create saved search: %w", err)
	}
	return saved, nil
}

// List returns the user's active saved searches, refreshing each entry's
// live result count. A refresh failure on one entry keeps its stale count
// and never blocks the others.
func (s *Store) List(ctx context.Context, userID string) ([]Entry, error) {
	var searches []models.SavedSearch
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").
		Find(&searches).Error
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}

	entries := make([]Entry, 0, len(searches))
	for i := range searches {
		entry := Entry{SavedSearch: searches[i], Params: decodeParams(searches[i].Params)}

		count, err := s.executor.Count(ctx, query.BuildPublicPlan(query.ParseFilterParams(entry.Params)))
		if err != nil {
			// Stale count is acceptable; refresh is per-entry best effort.
			s.logger.Warn("saved-search count refresh failed",
				"component", "savedsearch", "id", searches[i].ID, "error", err)
			entries = append(entries, entry)
			continue
		}

		entry.HasNewResults = count > searches[i].LastResultCount
		if count != searches[i].LastResultCount {
			if err := s.db.WithContext(ctx).Model(&models.SavedSearch{}).
				Where("id = ?", searches[i].ID).
				Update("last_result_count", count).Error; err != nil {
				s.logger.Warn("saved-search count persist failed",
					"component", "savedsearch", "id", searches[i].ID, "error", err)
			}
			entry.LastResultCount = count
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Get returns one active saved search owned by the user.
func (s *Store) Get(ctx context.Context, userID, id string) (*models.SavedSearch, error) {
	var saved models.SavedSearch
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND active = ?", id, userID, true).
		First(&saved).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("saved search %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get saved search: %w", err)
	}
	return &saved, nil
}

// Execute re-runs the stored filter set through the full search pipeline
// and records the execution time and refreshed count.
func (s *Store) Execute(ctx context.Context, userID, id string) (*search.Result, error) {
	saved, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, saved)
}

// run executes a saved search and persists lastExecutedAt plus the count.
func (s *Store) run(ctx context.Context, saved *models.SavedSearch) (*search.Result, error) {
	params := decodeParams(saved.Params)
	plan := query.BuildPublicPlan(query.ParseFilterParams(params))

	result, err := s.executor.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := map[string]interface{}{
		"last_executed_at":  now,
		"last_result_count": result.Total,
	}
	if err := s.db.WithContext(ctx).Model(&models.SavedSearch{}).
		Where("id = ?", saved.ID).Updates(update).Error; err != nil {
		s.logger.Warn("saved-search execution bookkeeping failed",
			"component", "savedsearch", "id", saved.ID, "error", err)
	}
	saved.LastExecutedAt = &now
	saved.LastResultCount = result.Total
	return result, nil
}

// Deactivate turns alerts and listing off for a search without removing it;
// a deactivated search frees its name for reuse.
func (s *Store) Deactivate(ctx context.Context, userID, id string) error {
	return s.setActive(ctx, userID, id, false)
}

func (s *Store) setActive(ctx context.Context, userID, id string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.SavedSearch{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("update saved search: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("saved search %s not found", id)
	}
	return nil
}

// Delete permanently removes a saved search. Deletion is terminal and
// irreversible; there is no soft-deleted state to restore from.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.SavedSearch{})
	if res.Error != nil {
		return fmt.Errorf("delete saved search: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("saved search %s not found", id)
	}
	return nil
}

// DueForAlerts returns every active saved search whose alert interval has
// elapsed at now.
func (s *Store) DueForAlerts(ctx context.Context, now time.Time) ([]models.SavedSearch, error) {
	var searches []models.SavedSearch
	err := s.db.WithContext(ctx).
		Where("active = ? AND alert_frequency != ?", true, models.AlertNever).
		Find(&searches).Error
	if err != nil {
		return nil, fmt.Errorf("load alert candidates: %w", err)
	}

	due := searches[:0]
	for _, saved := range searches {
		if saved.DueForAlert(now) {
			due = append(due, saved)
		}
	}
	return due, nil
}

// RunForAlert executes a due saved search and returns the previous and new
// result counts so the caller can report drift.
func (s *Store) RunForAlert(ctx context.Context, saved *models.SavedSearch) (previous, current int64, err error) {
	previous = saved.LastResultCount
	result, err := s.run(ctx, saved)
	if err != nil {
		return previous, previous, err
	}
	return previous, result.Total, nil
}

// NormalizeParams flattens a JSON-shaped parameter map into the flat
// string-array form the filter parser accepts. Keys in arrayKeys always end
// up as string arrays whether they arrived as scalar, comma-joined string,
// or array.
func NormalizeParams(raw map[string]interface{}) map[string][]string {
	out := make(map[string][]string, len(raw))
	for key, value := range raw {
		var items []string
		switch v := value.(type) {
		case nil:
			continue
		case []interface{}:
			for _, elem := range v {
				items = append(items, valueString(elem))
			}
		case []string:
			items = v
		case string:
			if arrayKeys[key] {
				for _, part := range strings.Split(v, ",") {
					if part = strings.TrimSpace(part); part != "" {
						items = append(items, part)
					}
				}
			} else {
				items = []string{v}
			}
		default:
			items = []string{valueString(v)}
		}
		if len(items) > 0 {
			out[key] = items
		}
	}
	return out
}

func valueString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; render integers without a decimal point.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func decodeParams(encoded string) map[string][]string {
	params := make(map[string][]string)
	if encoded == "" {
		return params
	}
	if err := json.Unmarshal([]byte(encoded), &params); err != nil {
		// A corrupt row degrades to a match-all search rather than failing.
		return make(map[string][]string)
	}
	return params
}
