package outwriter

import (
	"os"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"golang.org/x/term"
)

// Bounds of a truncated text column.
const (
	minTextWidth     = 15
	maxTextWidth     = 70
	defaultTermWidth = 80 // narrow terminals and CI
)

// terminalWidth returns the --width override, the detected terminal width, or a default.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return defaultTermWidth
	}
	return detected
}

// getMaxTextWidth returns the room left for one free-text column once the fixed
// columns, which take reservedWidth characters with borders, are laid out.
func getMaxTextWidth(cfg *contract.Config, reservedWidth int) int {
	available := terminalWidth(cfg) - reservedWidth
	if available < minTextWidth {
		return minTextWidth
	}
	if available > maxTextWidth {
		return maxTextWidth
	}
	return available
}
