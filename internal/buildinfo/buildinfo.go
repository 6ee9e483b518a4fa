// Package buildinfo reports the version stamped into a binary with -ldflags.
package buildinfo

import "go.uber.org/zap"

const notAvailable = "N/A"

// Info is the version triple of a binary. Empty fields read as "N/A".
type Info struct {
	Version string
	Date    string
	Commit  string
}

func New(version, date, commit string) Info {
	return Info{
		Version: orNA(version),
		Date:    orNA(date),
		Commit:  orNA(commit),
	}
}

// Log writes the build info as a single structured entry.
func (i Info) Log(logger *zap.SugaredLogger) {
	logger.Infow("build info",
		"version", i.Version,
		"date", i.Date,
		"commit", i.Commit,
	)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
