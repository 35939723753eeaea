//go:build !unix

package shell

import "os/exec"

// killGroup keeps the default cancellation, which kills only the direct
// child. WaitDelay still bounds how long Wait blocks on its pipes.
func killGroup(*exec.Cmd) {}
