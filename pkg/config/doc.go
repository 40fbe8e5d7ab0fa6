// Package config loads and validates archiver configuration.
//
// Configuration is read from a YAML file, then overlaid with environment
// variables. Credentials use the WORKBENCH_URL, WORKBENCH_USER, and
// WORKBENCH_TOKEN variables; other settings use ARCHIVER_SECTION_FIELD
// names (for example ARCHIVER_SCANNER_BATCH_SIZE). The file is optional:
// a run can be configured entirely from the environment.
package config
