package omnetup

import (
	"bufio"
	"os"
	"strings"
)

// askForConfirmation prompts the user with a yes/no question. Anything but
// an explicit yes counts as no.
func askForConfirmation(style colorPrinter, prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	cPrintf(style, "%s [y/N]: ", prompt)

	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	return false
}
