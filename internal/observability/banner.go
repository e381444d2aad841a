package observability

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

func termWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 80
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// PrintBanner writes the startup banner centred on the terminal.
func PrintBanner() {
	banner := `
    ____  ___  ________  ___      _______________
   / __ \/   |/_  __/ / / / | /| / /  _/ ___/ __/
  / /_/ / /| | / / / /_/ /| |/ |/ // / \__ \/ _/
 / ____/ ___ |/ / / __  / |__/|__/ // ___/ / /___
/_/   /_/  |_/_/ /_/ /_/       /___//____/_____/

        >> ONE STEP AT A TIME <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

// PrintReady announces the listening address under the banner.
func PrintReady(addr string) {
	fmt.Printf("%s[ READY ] listening on %s%s\n", colorNeonMag, addr, colorReset)
}
