/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package common contains properties shared across the pdfredact subpackages.
package common

import (
	"time"
)

const releaseYear = 2026
const releaseMonth = 1
const releaseDay = 12
const releaseHour = 9
const releaseMin = 0

// Version is the current pdfredact module version.
const Version = "0.1.0"

// ReleasedAt is the release timestamp corresponding to Version.
var ReleasedAt = time.Date(releaseYear, releaseMonth, releaseDay, releaseHour, releaseMin, 0, 0, time.UTC)
