// Package server wires the dashboard process together: vault, gate,
// sessions, data services, and the HTTP stack.
//
// The SQLite store and the data service on top of it exist only while the
// vault is unlocked. The gate's hooks open them after a successful PIN
// validation and close them before the vault reseals on logout or
// shutdown, so handlers reach the store through Data and must tolerate it
// being absent.
//
// Run serves plain TCP by default. With tailscale.enabled the process
// joins a tailnet via tsnet instead and serves on :80, on :443 with
// Tailscale-provisioned certificates (https), or publicly through Funnel
// (funnel).
package server
