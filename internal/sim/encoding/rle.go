package encoding

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"blockworld.dev/internal/sim/blocks"
)

// AppendRLE appends (id, run) uvarint pairs for ids to dst.
func AppendRLE(dst []byte, ids []blocks.ID) []byte {
	for i := 0; i < len(ids); {
		b := ids[i]
		j := i + 1
		for j < len(ids) && ids[j] == b {
			j++
		}
		dst = binary.AppendUvarint(dst, uint64(b))
		dst = binary.AppendUvarint(dst, uint64(j-i))
		i = j
	}
	return dst
}

// EncodeRLE is AppendRLE wrapped in standard base64, the form used in JSON
// frames and snapshots.
func EncodeRLE(ids []blocks.ID) string {
	return base64.StdEncoding.EncodeToString(AppendRLE(nil, ids))
}

// DecodeRLE expands an EncodeRLE payload. want > 0 pins the expected length,
// so a truncated or oversized payload is rejected instead of silently padded.
func DecodeRLE(b64 string, want int) ([]blocks.ID, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]blocks.ID, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", b)
		}
		if run == 0 {
			return nil, fmt.Errorf("zero-length run at %d", i)
		}
		if want > 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("run overflows %d cells", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, blocks.ID(b))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("decoded %d cells, want %d", len(out), want)
	}
	return out, nil
}
