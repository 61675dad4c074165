// Package logging provides opt-in file-based logging with rotation for
// corpusgap. When the --debug flag is set, comprehensive JSON logs are
// written to ~/.corpusgap/logs/ for troubleshooting. By default logging
// is minimal and goes to stderr only.
package logging
