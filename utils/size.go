// SPDX-License-Identifier: EPL-2.0

package utils

import "fmt"

// HumanSize renders a byte count the way the recordings list shows it:
// whole megabytes, else whole kilobytes, else bytes.
func HumanSize(n int64) string {
	kb := n / 1024
	mb := kb / 1024

	switch {
	case mb > 0:
		return fmt.Sprintf("%dMB", mb)
	case kb > 0:
		return fmt.Sprintf("%dKB", kb)
	}
	return fmt.Sprintf("%dB", n)
}
