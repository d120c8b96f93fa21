// Package data orchestrates ECB fetches into the observation store and
// assembles the read models the dashboard serves.
//
// # Refresh Flow
//
// A refresh walks a set of catalog series, skips ones updated within the
// last hour unless forced, fetches the rest over the default range, and
// replaces each series' stored observations wholesale. Every attempt is
// recorded in the fetch log, failures included, so the last-refresh
// display and fetch troubleshooting survive restarts.
//
// After any successful write the store's WAL is checkpointed and the
// vault reseals the encrypted copy, keeping the at-rest ciphertext within
// one refresh of the live data.
//
// # Read Models
//
// Dashboard assembles the overview tiles (latest EUR/USD with
// day-over-day change, latest inflation with its deviation from the 2%
// target, latest deposit facility rate) purely from store reads. The
// windowed readers return a series with its observations over a trailing
// display range for charting.
package data
