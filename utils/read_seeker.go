// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"bytes"
	"fmt"
	"io"
)

// AsReadSeeker returns r itself when it can seek, otherwise it buffers the
// whole stream in memory. go-audio decoders require seeking.
func AsReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering stream: %w", err)
	}

	return bytes.NewReader(data), nil
}
