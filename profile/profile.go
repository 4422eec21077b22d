// Package profile holds named discovery requests: a service UUID
// filter, an optional attribute-ID filter and the search-flow choice,
// so a caller (chiefly the sdpdiscover CLI) can refer to a well-known
// discovery by name instead of spelling out UUIDs every time.
package profile

import (
	"io/ioutil"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/corvid-labs/btsdp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Profile is a named, reusable client.DiscoverRequest shape.
type Profile struct {
	Name       string      `json:"name"`
	UUIDs      []btsdp.UUID `json:"uuids"`
	AttrIDs    []uint16    `json:"attr_ids,omitempty"`
	AttrSearch bool        `json:"attr_search"`
}

// Well-known profiles, named after the services they search for.
var (
	// OBEXObjectPush searches for the OBEX Object Push service,
	// fetching every attribute on any match.
	OBEXObjectPush = Profile{
		Name:       "obex-object-push",
		UUIDs:      []btsdp.UUID{btsdp.UUID16(0x1105)},
		AttrSearch: true,
	}

	// SerialPort searches for the Serial Port Profile service,
	// fetching every attribute on any match.
	SerialPort = Profile{
		Name:       "serial-port",
		UUIDs:      []btsdp.UUID{btsdp.UUID16(0x1101)},
		AttrSearch: true,
	}

	// builtins indexes the canned profiles above by name.
	builtins = map[string]Profile{
		OBEXObjectPush.Name: OBEXObjectPush,
		SerialPort.Name:     SerialPort,
	}
)

// Lookup returns a canned profile by name.
func Lookup(name string) (Profile, bool) {
	p, ok := builtins[name]
	return p, ok
}

// Load reads a Profile from a JSON file at path.
func Load(path string) (Profile, error) {
	var p Profile
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return p, errors.Wrap(err, "sdp: read profile")
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, errors.Wrap(err, "sdp: decode profile")
	}
	return p, nil
}

// Save writes p to path as JSON.
func Save(path string, p Profile) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(err, "sdp: encode profile")
	}
	if err := ioutil.WriteFile(path, b, 0644); err != nil {
		return errors.Wrap(err, "sdp: write profile")
	}
	return nil
}
