package uieffects

import "os"

// exitProcess terminates the process. It is a package-level variable so a
// test can replace it and exercise Reboot's "only returns on failure"
// contract (agent.Effects.Reboot) without exiting the test binary.
var exitProcess = os.Exit
