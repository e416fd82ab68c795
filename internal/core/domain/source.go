package domain

import "strconv"

// Source is a source description attached to persons or families.
type Source struct {
	Handle   string
	RemoteID string // remote source-description id, may be empty
	Seq      int    // registry-assigned fallback sequence number
	Title    string
	Citation string
	URL      string
	Notes    []*Note
	Modified int64 // last-modified timestamp, milliseconds since epoch
}

// ID returns the record identifier: S<remote id> or S<seq>.
func (s *Source) ID() string {
	if s.RemoteID != "" {
		return "S" + s.RemoteID
	}
	return "S" + strconv.Itoa(s.Seq)
}

// Citation links a source to a record with an optional change message.
type Citation struct {
	Handle   string
	RemoteID string
	Source   *Source
	Message  string
	Modified int64
}

// ID returns the record identifier.
func (c *Citation) ID() string {
	return "C" + c.RemoteID
}
