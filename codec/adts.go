// SPDX-License-Identifier: EPL-2.0

package codec

import "fmt"

const adtsHeaderLen = 7

// splitADTS cuts the complete ADTS frames at the start of buf and returns
// their raw AAC payloads, which alias buf, and the number of bytes consumed.
// A trailing partial frame is left for the next call.
func splitADTS(buf []byte) (frames [][]byte, consumed int, err error) {
	for len(buf)-consumed >= adtsHeaderLen {
		b := buf[consumed:]

		// syncword 0xFFF
		if b[0] != 0xFF || b[1]&0xF0 != 0xF0 {
			return frames, consumed, fmt.Errorf("%w: no syncword at offset %d", ErrBadADTS, consumed)
		}

		headerLen := adtsHeaderLen
		if b[1]&0x01 == 0 { // protection_absent unset: 16-bit CRC follows
			headerLen += 2
		}

		frameLen := int(b[3]&0x03)<<11 | int(b[4])<<3 | int(b[5])>>5
		if frameLen < headerLen {
			return frames, consumed, fmt.Errorf("%w: frame length %d at offset %d", ErrBadADTS, frameLen, consumed)
		}
		if len(b) < frameLen {
			break
		}

		frames = append(frames, b[headerLen:frameLen])
		consumed += frameLen
	}
	return frames, consumed, nil
}
