package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	colorReset = "\x1b[0m"
	colorCyan  = "\x1b[36m"
	colorRed   = "\x1b[31m"
	colorAmber = "\x1b[33m"
)

// TextFormatter renders "time [LEVEL] [component] message key=value".
type TextFormatter struct {
	DisableTimestamp bool
	Color            bool
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	levelStr := entry.Level.String()
	if levelStr == "warning" {
		levelStr = "warn"
	}
	level := strings.ToUpper(levelStr)
	if f.Color {
		switch entry.Level {
		case logrus.WarnLevel:
			level = colorAmber + level + colorReset
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			level = colorRed + level + colorReset
		}
	}
	b.WriteString(fmt.Sprintf("[%s]", level))

	if component, ok := entry.Data["component"]; ok {
		componentStr := fmt.Sprintf("%v", component)
		if f.Color {
			componentStr = colorCyan + componentStr + colorReset
		}
		b.WriteString(fmt.Sprintf(" [%s]", componentStr))
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	// Sorted so output is stable across runs
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
