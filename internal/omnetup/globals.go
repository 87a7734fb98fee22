package omnetup

import (
	"errors"

	"github.com/gookit/color"
)

// Global variables
var (
	Debug   bool
	Verbose bool

	ConfigFile = "omnetup.conf"

	version   = "dev" // default version; overridden at build time
	buildDate = "unknown"

	errNoManager = errors.New("no conda-compatible package manager found in PATH")

	// Global executor (declared, to be assigned in Main)
	UserExec *Executor
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)
