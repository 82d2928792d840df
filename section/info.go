package section

import (
	"fmt"
	"io"
	"strings"

	"github.com/charsyam/traildb/errs"
)

// Info carries the counters written to the info file.
type Info struct {
	NumCookies        uint64
	NumEvents         uint64
	MinTimestamp      uint32
	MaxTimestamp      uint32
	MaxTimestampDelta uint32
}

// WriteInfo emits the single ASCII info line:
//
//	<num_cookies> <num_events> <min_timestamp> <max_timestamp> <max_timestamp_delta>\n
func WriteInfo(w io.Writer, info Info) error {
	_, err := fmt.Fprintf(w, "%d %d %d %d %d\n",
		info.NumCookies, info.NumEvents,
		info.MinTimestamp, info.MaxTimestamp, info.MaxTimestampDelta)

	return err
}

// ParseInfo parses an info line produced by WriteInfo.
func ParseInfo(data []byte) (Info, error) {
	line := strings.TrimSuffix(string(data), "\n")
	var info Info
	n, err := fmt.Sscanf(line, "%d %d %d %d %d",
		&info.NumCookies, &info.NumEvents,
		&info.MinTimestamp, &info.MaxTimestamp, &info.MaxTimestampDelta)
	if err != nil || n != 5 {
		return Info{}, fmt.Errorf("%w: %q", errs.ErrInvalidInfo, line)
	}

	return info, nil
}
