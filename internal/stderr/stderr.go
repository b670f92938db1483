//go:build !windows

// Package stderr routes what native audio libraries write straight to file
// descriptor 2 into the daemon log.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Capture redirects fd 2 into a pipe and logs every line it receives. The
// returned stop restores the original descriptor and waits for pending
// lines. Only call it when the logger itself does not write to stderr.
func Capture(log logrus.FieldLogger) (stop func(), err error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	log = log.WithField("source", "stderr")
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				log.Warn(line)
			}
		}
	}()

	return func() {
		_ = syscall.Dup2(orig, int(os.Stderr.Fd()))
		_ = syscall.Close(orig)
		w.Close()
		<-done
		r.Close()
	}, nil
}
