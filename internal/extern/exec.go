package extern

import (
	"bytes"
	"os/exec"
)

// OSExec is the default Exec collaborator, running a command to
// completion and collecting its combined output streams separately.
type OSExec struct{}

func NewOSExec() *OSExec { return &OSExec{} }

func (e *OSExec) Run(name string, args []string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.Command(name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	stdout, stderr = outBuf.String(), errBuf.String()
	if runErr == nil {
		return stdout, stderr, 0, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return stdout, stderr, exitErr.ExitCode(), nil
	}
	return stdout, stderr, -1, runErr
}
