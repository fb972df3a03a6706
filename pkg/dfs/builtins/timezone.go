package builtins

import (
	"sort"
	"sync"
	"time"

	// Embedded zone database so lookups work on hosts without one.
	_ "time/tzdata"
)

// UTCZone is the timezone argument that explicitly selects UTC.
const UTCZone = "_"

// Recognized timezone names and the IANA zone each one loads.
var zoneNames = map[string]string{
	"US/Alaska":        "US/Alaska",
	"US/Aleutian":      "US/Aleutian",
	"US/Arizona":       "US/Arizona",
	"US/Central":       "US/Central",
	"US/EastIndiana":   "US/East-Indiana",
	"US/Eastern":       "US/Eastern",
	"US/Hawaii":        "US/Hawaii",
	"US/IndianaStarke": "US/Indiana-Starke",
	"US/Michigan":      "US/Michigan",
	"US/Mountain":      "US/Mountain",
	"US/Pacific":       "US/Pacific",
	"US/Samoa":         "US/Samoa",
}

// IANA spellings accepted as aliases.
var zoneAliases = map[string]string{
	"US/East-Indiana":   "US/EastIndiana",
	"US/Indiana-Starke": "US/IndianaStarke",
}

var (
	zonesOnce sync.Once
	zones     map[string]*time.Location
)

func loadZones() {
	zones = make(map[string]*time.Location, len(zoneNames))
	for name, iana := range zoneNames {
		loc, err := time.LoadLocation(iana)
		if err != nil {
			continue
		}
		zones[name] = loc
	}
}

// Timezones returns the recognized timezone names in ascending order.
func Timezones() []string {
	names := make([]string, 0, len(zoneNames))
	for name := range zoneNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupZone resolves a timezone argument. UTCZone, "UTC" and the empty
// string select UTC. Unrecognized names report false.
func LookupZone(name string) (*time.Location, bool) {
	switch name {
	case UTCZone, "UTC", "":
		return time.UTC, true
	}
	if canonical, ok := zoneAliases[name]; ok {
		name = canonical
	}
	zonesOnce.Do(loadZones)
	loc, ok := zones[name]
	return loc, ok
}
