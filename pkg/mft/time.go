package mft

import (
	"time"

	"golang.org/x/text/encoding/unicode"
)

//100ns intervals between 1601-01-01 and 1970-01-01
const filetimeEpochDelta = 116444736000000000

//FiletimeToTime converts a windows FILETIME to UTC. Zero stays the zero time.
func FiletimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	d := int64(ft) - filetimeEpochDelta
	return time.Unix(d/10000000, (d%10000000)*100).UTC()
}

//FiletimeToISO is the string form used in the exported rows
func FiletimeToISO(ft uint64) string {
	t := FiletimeToTime(ft)
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func utf16ToString(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	ud := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := ud.Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}
