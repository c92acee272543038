package launcher

import (
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// Cmd turns the assembled command into an exec.Cmd
func (c *LaunchCommand) Cmd() *exec.Cmd {
	cmd := exec.Command(c.Executable, c.Args...)
	cmd.Dir = c.WorkingDir
	cmd.Env = os.Environ()
	for key, value := range c.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}
	return cmd
}

// Run spawns the game and blocks until it exits. Ctrl-C is forwarded
// to the game first so it can shut down cleanly.
func Run(launch *LaunchCommand, stdout io.Writer, stderr io.Writer) error {
	cmd := launch.Cmd()

	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		_, ok := <-interrupts
		if !ok {
			return
		}
		// let the game stop itself, then follow
		cmd.Process.Signal(syscall.SIGTERM)
		signal.Stop(interrupts)

		self := &process.Process{Pid: int32(os.Getpid())}
		self.Terminate()
	}()

	err := cmd.Wait()

	// unregister before closing, a signal landing on a closed but
	// still registered channel panics the runtime dispatcher
	signal.Stop(interrupts)
	close(interrupts)

	// exit code 130 is a successful ctrl-c stop
	if cmd.ProcessState != nil && cmd.ProcessState.ExitCode() == 130 {
		return nil
	}
	return err
}
