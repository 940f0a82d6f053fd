package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"reelist/internal/config"
	"reelist/internal/userdata"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// formatter renders values for one output stream.
type formatter struct {
	color   bool
	width   int
	printer *message.Printer
	now     func() time.Time
}

func newFormatter(w io.Writer, cfg *config.Config) formatter {
	tag := language.AmericanEnglish
	if cfg != nil {
		if parsed, err := language.Parse(cfg.TMDB.Language); err == nil {
			tag = parsed
		}
	}
	return formatter{
		color:   shouldColorize(w),
		width:   terminalWidth(w),
		printer: message.NewPrinter(tag),
		now:     time.Now,
	}
}

func (f formatter) stars(rating int) string {
	if !userdata.ValidRating(rating) {
		return ""
	}
	filled := strings.Repeat("★", rating)
	empty := strings.Repeat("☆", userdata.MaxRating-rating)
	if f.color {
		return text.FgYellow.Sprint(filled) + text.FgHiBlack.Sprint(empty)
	}
	return filled + empty
}

func (f formatter) heading(value string) string {
	if f.color {
		return text.Bold.Sprint(value)
	}
	return value
}

func (f formatter) count(n int64) string {
	return f.printer.Sprintf("%d", n)
}

func (f formatter) score(average float64, votes int64) string {
	if votes == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", average)
}

func (f formatter) year(year int) string {
	if year == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", year)
}

func (f formatter) since(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, f.now(), "ago", "from now")
}
