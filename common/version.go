package common

import "time"

const releaseYear = 2026
const releaseMonth = 7
const releaseDay = 30

// Version is the module's release version.
const Version = "0.1.0"

// ReleasedAt is the timestamp of the Version release.
var ReleasedAt = time.Date(releaseYear, releaseMonth, releaseDay, 0, 0, 0, 0, time.UTC)
