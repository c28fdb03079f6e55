package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sun1tar/taskmanager/internal/models"
)

const remindLayout = "2006-01-02 15:04 MST"

// formatTask: "{N:>4}  {*| } {TITLE}[  (remind: ...)]"
func formatTask(w io.Writer, n int, t models.Task, suffix string) {
	mark := " "
	if t.Starred {
		mark = "*"
	}
	line := fmt.Sprintf("%4d  %s %s", n, mark, normalizeTitle(t.Title))
	if t.RemindAt != nil {
		line += "  (remind: " + t.RemindAt.UTC().Format(remindLayout) + ")"
	}
	if suffix != "" {
		line += "  [" + suffix + "]"
	}
	fmt.Fprintln(w, line)
}

func formatListName(w io.Writer, l models.List) {
	name := l.Name
	if name == models.DefaultListName {
		name += " [default]"
	}
	fmt.Fprintln(w, name)
}

func normalizeTitle(title string) string {
	title = strings.NewReplacer("\r", " ", "\n", " ").Replace(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// parseRemind принимает RFC 3339 или "2006-01-02 15:04" в местном времени
func parseRemind(s string) (string, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(time.RFC3339), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t.Format(time.RFC3339), nil
	}
	return "", userErrorf("invalid reminder time: %s (use RFC 3339 or \"YYYY-MM-DD HH:MM\")", s)
}

func printf(env *Env, format string, args ...interface{}) {
	fmt.Fprintf(env.Out, format, args...)
}
