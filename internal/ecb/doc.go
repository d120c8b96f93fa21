// Package ecb fetches financial series from the European Central Bank's
// SDMX REST data API.
//
// # Request Shape
//
// Series are addressed as {base}/data/{resource}/{key} with format=jsondata,
// where resource is an SDMX dataflow ("EXR", "ICP", "FM") and key selects
// one series within it. Period bounds go in startPeriod/endPeriod query
// parameters as YYYY-MM-DD dates.
//
// # Rate Limiting and Retries
//
// Every request first passes a token-bucket limiter sized from the
// configured per-minute budget. Transient failures (5xx, network errors,
// timeouts) are retried with exponential backoff; 404 and 429 responses
// are surfaced immediately as ErrSeriesNotFound and ErrRateLimited since
// retrying them cannot succeed.
//
// # Local-Data Mode
//
// When use_local_data is set, series are read from
// <local_data_dir>/<NAME>.json instead of the network. The fetch
// subcommand downloads those documents, which lets the dashboard run
// behind firewalls that block the ECB API.
package ecb
