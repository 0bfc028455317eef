// Package cli provides terminal formatting for the routeglass command:
// colours and column-aligned route tables.
package cli

import "os"

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + ansiReset
}

// Green marks success: valid RPKI, replays that now normalize.
func Green(s string) string { return paint(ansiGreen, s) }

// Yellow marks states that need attention but are not failures.
func Yellow(s string) string { return paint(ansiYellow, s) }

// Red marks failures.
func Red(s string) string { return paint(ansiRed, s) }

// Bold is used for titles.
func Bold(s string) string { return paint(ansiBold, s) }
