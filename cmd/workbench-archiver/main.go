// Workbench Archiver identifies and archives stale scans on a FossID
// Workbench server.
//
// Archival runs in two phases so that the set of scans to archive can be
// reviewed before anything is touched:
//
//	# Phase 1: identify stale scans and write an archive plan
//	workbench-archiver plan --days 365 --output archive_plan.json
//
//	# Review archive_plan.json, then execute it
//	workbench-archiver archive --input archive_plan.json
//
//	# Inspect the audit trail of past runs
//	workbench-archiver audit list
//
// Server credentials come from the configuration file or from the
// WORKBENCH_URL, WORKBENCH_USER, and WORKBENCH_TOKEN environment
// variables (a .env file in the working directory is honored).
package main

func main() {
	Execute()
}
