package media

import "fmt"

// FormatDuration renders a seconds count as MM:SS. Minutes are not capped at
// 59 (a 90-minute video formats as "90:00"); both fields are zero-padded to
// two digits.
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
