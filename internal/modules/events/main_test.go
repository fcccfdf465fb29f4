package events

import (
	"testing"

	"go.uber.org/goleak"
)

// Cache flights and budget checks must not outlive the calls that start them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
