package timezone

import (
	"fmt"
	"time"
)

// Load resolves an IANA zone name like "America/Los_Angeles". An empty name is the
// machine's local zone, which is rarely what you want on a server that may end up
// in another region: dates are cut at midnight of this location.
func Load(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return location, nil
}
