// Package e2e contains the browser-driven specs for the Aurora theme
// demo: authentication bootstrap, admin plugin toggling, and the
// front-end appearance and interaction checks. The suite runs against
// the in-process demo-site stand-in and requires a headless Chromium;
// specs skip when none is installed.
package e2e
