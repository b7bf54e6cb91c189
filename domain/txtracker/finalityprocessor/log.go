package finalityprocessor

import (
	"github.com/kaspanet/txtracker/infrastructure/logger"
)

var log = logger.RegisterSubSystem("FINL")
