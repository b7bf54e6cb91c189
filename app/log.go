package app

import (
	"github.com/kaspanet/txtracker/infrastructure/logger"
)

var log = logger.RegisterSubSystem("TXAP")
