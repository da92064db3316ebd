package store

import (
	"context"
	"errors"
	"fmt"

	"pgsleep/models"
	"pgsleep/worker"

	"gorm.io/gorm"
)

// ErrNotInitialized is returned when the todo table has not been created yet.
// Run the server with -c to create and seed it.
var ErrNotInitialized = errors.New("store not initialized")

// TodoStore persists and lists Todo records.
type TodoStore struct {
	db   *gorm.DB
	mode worker.Mode
}

// NewTodoStore binds the store to db. In cooperative mode every Scope pins its
// own pooled connection before starting its transaction.
func NewTodoStore(db *gorm.DB, mode worker.Mode) *TodoStore {
	return &TodoStore{db: db, mode: mode}
}

// Scope runs fn inside one transaction for the request: committed when fn
// returns nil, rolled back otherwise. The connection goes back to the pool
// when Scope returns.
func (s *TodoStore) Scope(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	if s.mode == worker.Cooperative {
		return db.Connection(func(conn *gorm.DB) error {
			return conn.Transaction(fn)
		})
	}
	return db.Transaction(fn)
}

// ListAll returns every record, ordered by id.
func (s *TodoStore) ListAll(tx *gorm.DB) ([]models.Todo, error) {
	if tx == nil {
		tx = s.db
	}
	if !tx.Migrator().HasTable(&models.Todo{}) {
		return nil, ErrNotInitialized
	}

	var todos []models.Todo
	if err := tx.Order("id").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// ListAllAsMaps is ListAll with each record turned into a field map.
func (s *TodoStore) ListAllAsMaps(tx *gorm.DB) ([]map[string]any, error) {
	todos, err := s.ListAll(tx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.AsMap())
	}
	return out, nil
}

// Seed creates the table if needed and inserts a fresh batch of dummy records
// in a single transaction. It does not check for earlier runs: seeding twice
// leaves two batches.
func (s *TodoStore) Seed(ctx context.Context) (int, error) {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.Todo{}); err != nil {
		return 0, fmt.Errorf("migrate todo: %w", err)
	}

	todos := models.SeedTodos()
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&todos).Error
	})
	if err != nil {
		return 0, fmt.Errorf("seed todos: %w", err)
	}
	return len(todos), nil
}
