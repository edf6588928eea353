// Package tasks orchestrates the catalog workflows with per-item failure tracking.
//
// # Workflows
//
// [CatalogEngine] implements [Workflows]:
//
//  1. [CatalogEngine.Search] : one catalog search, normalized in provider order
//     - Empty queries fail with [shared.ErrInvalidInput]
//     - The limit is clamped to 1..50 (default 20)
//     - Upstream failures propagate
//
//  2. [CatalogEngine.NewReleases] : albums → album tracks → track details → previews
//     - Album listing failure is fatal and yields an empty list
//     - Per-album and per-track failures are recorded as [ItemResult] values and skipped
//     - Stops fetching once the limit is reached
//     - Unplayable tracks follow the configured [UnplayablePolicy]
//
//  3. [CatalogEngine.TrackByID] : track details plus preview, [ExcludeUnplayable] always
//
//  4. [CatalogEngine.FavoriteTracks] : TrackByID over a list of saved ids, dropping absent ones
//
// # Progress Reporting
//
// [CatalogEngine.NewReleasesReport] accepts an optional channel of [ProgressUpdate] values.
// Updates use select with default so reporting never blocks the workflow.
//
// # Concurrency
//
// Track details are fetched through an errgroup with a fixed limit.
// Results are written by index so output order matches album order regardless of completion order.
// The context is checked before every album and every wave.
package tasks
