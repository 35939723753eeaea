// Package shell runs external processes for the platform adapters.
//
// An [Executor] either captures a process's output ([Executor.Run]) or
// forwards it line by line while the process is still running
// ([Executor.Stream]). The kind adapter, the tool checks and the bootstrap
// sequencer depend on the interface so tests can substitute a fake.
//
// Cancelling the context kills the process together with every child it
// started; output pipes still held open are closed after [WaitDelay].
package shell
