// Package scanner identifies stale scans in a Workbench installation.
//
// The scanner works in up to three passes over a listed scan inventory: a
// sparse sampling pass that narrows a large population to the regions
// likely to contain stale scans, a concurrent detail-fetch pass, and a
// classification pass that compares each scan's last update against a
// configurable cutoff.
package scanner
