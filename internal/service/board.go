package service

import (
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// BoardColumn is one Kanban column with its tasks in input order.
type BoardColumn struct {
	Status string
	Tasks  []*repository.Task
}

// ProjectBoard groups tasks into the five fixed columns. Tasks whose status
// is not a column name land in todo.
func ProjectBoard(tasks []*repository.Task) []BoardColumn {
	index := make(map[string]int, len(types.BoardColumns))
	columns := make([]BoardColumn, len(types.BoardColumns))
	for i, status := range types.BoardColumns {
		index[status] = i
		columns[i] = BoardColumn{Status: status, Tasks: []*repository.Task{}}
	}

	for _, task := range tasks {
		if task == nil {
			continue
		}
		i, ok := index[task.Status]
		if !ok {
			i = index[types.StatusTodo]
		}
		columns[i].Tasks = append(columns[i].Tasks, task)
	}
	return columns
}

// BoardColumnOf returns the column a status is displayed in.
func BoardColumnOf(status string) string {
	if types.IsBoardColumn(status) {
		return status
	}
	return types.StatusTodo
}
