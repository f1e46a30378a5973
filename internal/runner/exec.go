package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ExecSpawner starts real processes and streams stdout and stderr lines.
type ExecSpawner struct{}

// Spawn implements Spawner.
func (ExecSpawner) Spawn(name string, args []string, dir string, onLine func(string)) (Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	p := &execProcess{cmd: cmd}
	p.pipes.Add(2)
	go p.pipe(stdout, onLine)
	go p.pipe(stderr, onLine)
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	pipes  sync.WaitGroup
	lineMu sync.Mutex
}

func (p *execProcess) pipe(r io.Reader, onLine func(string)) {
	defer p.pipes.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || onLine == nil {
			continue
		}
		p.lineMu.Lock()
		onLine(line)
		p.lineMu.Unlock()
	}
}

func (p *execProcess) Wait() (int, error) {
	// Pipes must be drained before cmd.Wait closes them.
	p.pipes.Wait()
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		return exitErr.ExitCode(), nil
	default:
		return -1, err
	}
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
