//go:build windows

// Package stderr is a no-op on Windows, whose audio stack does not write to
// the process stderr.
package stderr

import "github.com/sirupsen/logrus"

// Capture is a no-op on Windows.
func Capture(_ logrus.FieldLogger) (func(), error) {
	return func() {}, nil
}
