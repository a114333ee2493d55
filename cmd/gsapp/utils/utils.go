package utils

import (
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// Fatal logs the error and exits.
func Fatal(message string, err error) {
	slog.Error(message, "err", err)
	os.Exit(1)
}
