package dedupe

// Package dedupe provides the shared singleflight group used to
// deduplicate concurrent card art generation requests. Using a
// centralized singleflight.Group ensures that only one generation job
// runs for a given card key while other callers wait for the result.

import "golang.org/x/sync/singleflight"

// ImageGroup deduplicates card art generation requests keyed by the
// canonical card image key (see keys.CardImageKey).
var ImageGroup singleflight.Group
