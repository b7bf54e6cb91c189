package scenario

import (
	"github.com/kaspanet/txtracker/infrastructure/logger"
)

var log = logger.RegisterSubSystem("SCNR")
