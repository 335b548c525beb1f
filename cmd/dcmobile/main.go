package main

import (
	"dcinside-mobile/cmd/dcmobile/commands"
	"dcinside-mobile/internal/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
