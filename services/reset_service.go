package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ResetModels is every model the reset tool sweeps. Deletion order is
// not taken from this slice: it is derived from the foreign-key graph
// of the parsed schemas, so adding a model here is enough.
var ResetModels = []any{
	&models.User{},
	&models.RefreshSession{},
}

// ResetService performs the operator-invoked bulk resets. It expects
// to run without concurrent mutating traffic.
type ResetService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewResetService(db *gorm.DB, log *zap.Logger) *ResetService {
	return &ResetService{DB: db, Log: log}
}

// DeletionOrder returns the known tables sorted so that every table is
// cleared before any table it references: referencing (child) tables
// first, referenced (parent) tables last.
func (s *ResetService) DeletionOrder() ([]string, error) {
	cache := &sync.Map{}
	var tables []string
	parentsOf := map[string][]string{}

	for _, model := range ResetModels {
		sch, err := schema.Parse(model, cache, s.DB.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}
		tables = append(tables, sch.Table)
		for _, rel := range sch.Relationships.BelongsTo {
			parentsOf[sch.Table] = append(parentsOf[sch.Table], rel.FieldSchema.Table)
		}
	}

	// Kahn's algorithm over child -> parent edges.
	indegree := map[string]int{}
	for _, table := range tables {
		indegree[table] = 0
	}
	for _, parents := range parentsOf {
		for _, parent := range parents {
			if _, known := indegree[parent]; known {
				indegree[parent]++
			}
		}
	}

	var order []string
	remaining := map[string]bool{}
	for _, table := range tables {
		remaining[table] = true
	}
	for len(remaining) > 0 {
		var ready []string
		for table := range remaining {
			if indegree[table] == 0 {
				ready = append(ready, table)
			}
		}
		if len(ready) == 0 {
			// reference cycle; clear the rest in name order
			for table := range remaining {
				ready = append(ready, table)
			}
			s.Log.Warn("foreign-key cycle between tables, falling back to name order",
				zap.Strings("tables", ready))
			sort.Strings(ready)
			order = append(order, ready...)
			break
		}
		sort.Strings(ready)
		for _, table := range ready {
			order = append(order, table)
			delete(remaining, table)
			for _, parent := range parentsOf[table] {
				if _, known := indegree[parent]; known {
					indegree[parent]--
				}
			}
		}
	}

	return order, nil
}

// ResetTables clears the requested tables (all known tables when none
// are requested) in FK-safe order. Per-table failures are logged and
// skipped; constraint enforcement, when suspended, is restored no
// matter what. With keepSuperuser the users table is dropped from the
// sweep and non-superuser accounts are deleted individually instead.
func (s *ResetService) ResetTables(requested []string, keepSuperuser bool) error {
	order, err := s.DeletionOrder()
	if err != nil {
		return err
	}

	tables := order
	if len(requested) > 0 {
		want := map[string]bool{}
		for _, table := range requested {
			want[table] = true
		}
		tables = nil
		for _, table := range order {
			if want[table] {
				tables = append(tables, table)
				delete(want, table)
			}
		}
		// tables we know nothing about are still attempted, last
		var unknown []string
		for table := range want {
			unknown = append(unknown, table)
		}
		sort.Strings(unknown)
		tables = append(tables, unknown...)
	}

	usingSQLite := s.DB.Dialector.Name() == "sqlite"
	if usingSQLite {
		// sqlite enforces FKs eagerly; suspend for the sweep and
		// restore unconditionally
		if err := s.DB.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
			return fmt.Errorf("disable foreign keys: %w", err)
		}
		defer func() {
			if err := s.DB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				s.Log.Error("failed to restore foreign key enforcement", zap.Error(err))
			}
		}()
	}

	usersTable := s.tableOf(&models.User{})
	if keepSuperuser && containsString(tables, usersTable) {
		tables = removeString(tables, usersTable)
		if err := s.deleteNonSuperusers(); err != nil {
			s.Log.Warn("failed to delete non-superuser accounts", zap.Error(err))
		}
	}

	for _, table := range tables {
		var clearErr error
		if usingSQLite {
			clearErr = s.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error
		} else {
			clearErr = s.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		}
		if clearErr != nil {
			s.Log.Warn("failed to clear table", zap.String("table", table), zap.Error(clearErr))
			continue
		}
		s.Log.Info("cleared table", zap.String("table", table))
	}

	if keepSuperuser {
		var superusers []models.User
		if err := s.DB.Where("is_superuser = ?", true).Find(&superusers).Error; err == nil {
			s.Log.Info("kept superuser accounts", zap.Int("count", len(superusers)))
			for _, user := range superusers {
				s.Log.Info("kept account",
					zap.String("username", user.Username),
					zap.String("email", user.Email))
			}
		}
	}

	return nil
}

// ResetUsers deletes accounts and their refresh sessions: every
// account, or only non-superusers when keepSuperuser is set. Returns
// how many accounts were deleted and how many remain.
func (s *ResetService) ResetUsers(keepSuperuser bool) (deleted, kept int64, err error) {
	var total int64
	if err := s.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	if keepSuperuser {
		subquery := s.DB.Model(&models.User{}).Select("id").Where("is_superuser = ?", false)
		if err := s.DB.Where("user_id IN (?)", subquery).Delete(&models.RefreshSession{}).Error; err != nil {
			return 0, 0, err
		}
		result := s.DB.Where("is_superuser = ?", false).Delete(&models.User{})
		if result.Error != nil {
			return 0, 0, result.Error
		}
		return result.RowsAffected, total - result.RowsAffected, nil
	}

	if err := s.DB.Where("1 = 1").Delete(&models.RefreshSession{}).Error; err != nil {
		return 0, 0, err
	}
	result := s.DB.Where("1 = 1").Delete(&models.User{})
	if result.Error != nil {
		return 0, 0, result.Error
	}
	return result.RowsAffected, 0, nil
}

// ResetProfiles clears the profile fields of one account (by username)
// or of every account, leaving identity and credentials untouched.
// Returns the number of accounts reset.
func (s *ResetService) ResetProfiles(username string) (int64, error) {
	clears := map[string]any{
		"height":         nil,
		"weight":         nil,
		"initial_weight": nil,
		"fat_percentage": nil,
		"fitness_goal":   nil,
		"date_of_birth":  nil,
	}

	if username != "" {
		var user models.User
		if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrUserNotFound, username)
			}
			return 0, err
		}
		if err := s.DB.Model(&user).Updates(clears).Error; err != nil {
			return 0, err
		}
		s.Log.Info("reset profile", zap.String("username", username))
		return 1, nil
	}

	result := s.DB.Model(&models.User{}).Where("1 = 1").Updates(clears)
	if result.Error != nil {
		return 0, result.Error
	}
	s.Log.Info("reset profiles", zap.Int64("count", result.RowsAffected))
	return result.RowsAffected, nil
}

func (s *ResetService) deleteNonSuperusers() error {
	var total, superusers int64
	if err := s.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return err
	}
	if err := s.DB.Model(&models.User{}).Where("is_superuser = ?", true).Count(&superusers).Error; err != nil {
		return err
	}

	result := s.DB.Where("is_superuser = ?", false).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	s.Log.Info("deleted non-superuser accounts",
		zap.Int64("deleted", result.RowsAffected),
		zap.Int64("kept", superusers))
	return nil
}

func (s *ResetService) tableOf(model any) string {
	sch, err := schema.Parse(model, &sync.Map{}, s.DB.NamingStrategy)
	if err != nil {
		return ""
	}
	return sch.Table
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

func removeString(list []string, drop string) []string {
	out := list[:0:0]
	for _, item := range list {
		if item != drop {
			out = append(out, item)
		}
	}
	return out
}
