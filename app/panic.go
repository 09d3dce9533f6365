package app

import (
	"strings"

	"receiver/kernel"
	"receiver/node/logger"
)

func installPanicHandler(log *logger.Logger) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		log.Errorf("%s: task=%s (%d) panic=%v", info.Runtime, info.Task, info.TaskID, info.Value)
		if len(info.Stack) == 0 {
			log.Errorf("stack: unavailable")
			return
		}
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line == "" {
				continue
			}
			log.Errorf("%s", line)
		}
	})
}
