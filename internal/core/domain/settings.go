package domain

// Settings are the persistable options of an export run.
type Settings struct {
	Username     string   `toml:"username"`
	Password     string   `toml:"password,omitempty"`
	Individuals  []string `toml:"individuals,omitempty"`
	Exclude      []string `toml:"exclude,omitempty"`
	Ascend       int      `toml:"ascend"`
	Descend      int      `toml:"descend"`
	Distance     int      `toml:"distance"`
	Marriage     bool     `toml:"marriage"`
	Contributors bool     `toml:"contributors"`
	Ordinances   bool     `toml:"ordinances"`
	GeonamesUser string   `toml:"geonames_user,omitempty"`
	TimeoutSec   int      `toml:"timeout"`
	XML          bool     `toml:"xml"`
	OutFile      string   `toml:"outfile,omitempty"`
}
