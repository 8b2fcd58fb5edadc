package main

import (
	"creditcounter/cmd/syllabus-cli/commands"
	"creditcounter/lib/serviceutil"
	_ "time/tzdata"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
