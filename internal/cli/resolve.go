package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/sun1tar/taskmanager/internal/models"
)

// resolveList ищет список по имени без учёта регистра; пустое имя - список по умолчанию
func resolveList(ctx context.Context, env *Env, name string) (models.List, error) {
	lists, err := env.API.Lists(ctx, env.Session)
	if err != nil {
		return models.List{}, err
	}
	if len(lists) == 0 {
		return models.List{}, userErrorf("no lists (create one: taskctl mklist <name>)")
	}

	if name == "" {
		for _, l := range lists {
			if l.Name == models.DefaultListName {
				return l, nil
			}
		}
		// самый старый список
		return lists[len(lists)-1], nil
	}

	var found []models.List
	for _, l := range lists {
		if strings.EqualFold(l.Name, name) {
			found = append(found, l)
		}
	}
	switch len(found) {
	case 0:
		return models.List{}, userErrorf("list not found: %s", name)
	case 1:
		return found[0], nil
	default:
		return models.List{}, userErrorf("ambiguous list name: %s", name)
	}
}

// resolveTask находит задачу по номеру (с 1) в порядке вывода "taskctl tasks"
func resolveTask(ctx context.Context, env *Env, list models.List, ref string) (models.Task, error) {
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 {
		return models.Task{}, userErrorf("invalid task number: %s", ref)
	}

	tasks, err := env.API.Tasks(ctx, env.Session, list.ID)
	if err != nil {
		return models.Task{}, err
	}
	if n > len(tasks) {
		return models.Task{}, userErrorf("task not found: %d", n)
	}
	return tasks[n-1], nil
}
