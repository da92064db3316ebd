package models

import "fmt"

// SeedSize is the number of records a single seeding run creates.
const SeedSize = 50

// Todo is the single record type served by the sleep endpoints.
type Todo struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title"`
	Done     bool   `json:"done"`
	Priority int    `json:"priority"`
}

// TableName keeps the table name singular.
func (Todo) TableName() string {
	return "todo"
}

// AsMap returns the record as a plain field-name to value mapping.
func (t Todo) AsMap() map[string]any {
	return map[string]any{
		"id":       t.ID,
		"title":    t.Title,
		"done":     t.Done,
		"priority": t.Priority,
	}
}

// SeedTodo builds the dummy record for the given index. The ID is left for the database.
func SeedTodo(index int) Todo {
	return Todo{
		Title:    fmt.Sprintf("Slave for the man %d", index),
		Done:     index%2 == 0,
		Priority: index % 5,
	}
}

// SeedTodos builds the full batch written by one seeding run.
func SeedTodos() []Todo {
	todos := make([]Todo, 0, SeedSize)
	for i := 0; i < SeedSize; i++ {
		todos = append(todos, SeedTodo(i))
	}
	return todos
}
