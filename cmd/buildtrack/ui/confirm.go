package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm asks the user a yes/no question on stderr and reads the answer
// from stdin. bypassHint describes how to skip the prompt in non-interactive
// mode (e.g. "use --yes to skip"). Non-interactive terminals return
// *NoInteractionError with the hint embedded.
func Confirm(question string, bypassHint string) (bool, error) {
	if err := RequireInteraction(bypassHint); err != nil {
		return false, fmt.Errorf("confirmation required: %w", err)
	}

	fmt.Fprint(os.Stderr, AccentStyle.Render("?")+" "+question+" "+MutedStyle.Render("[y/N]")+" ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, ErrCancelled
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
