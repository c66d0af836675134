package row

import "time"

// unixUTC formats a non-zero UNIX epoch second count as the spec's
// "YYYY-MM-DD HH:MM:SS" layout, in UTC.
func unixUTC(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04:05")
}
