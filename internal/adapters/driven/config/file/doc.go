// Package file persists run settings as TOML in the lineage config
// directory, so a run can be replayed without retyping every flag.
package file
