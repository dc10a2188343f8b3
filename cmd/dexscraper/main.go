package main

import (
	"dexscraper/cmd/dexscraper/commands"
	"dexscraper/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
