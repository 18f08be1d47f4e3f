// internal/service/continuity/airports.go

package continuity

import (
	_ "embed"
	"log"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed airports.yaml
var airportsYAML []byte

// airportInfo is the city and country a known airport code resolves to.
type airportInfo struct {
	City    string `yaml:"city"`
	Country string `yaml:"country"`
}

var airportTable = loadAirportTable()

func loadAirportTable() map[string]airportInfo {
	table := make(map[string]airportInfo)
	if err := yaml.Unmarshal(airportsYAML, &table); err != nil {
		// The table is embedded at build time; failing to parse it is a
		// programming error, not a runtime condition.
		log.Fatalf("invalid embedded airport table: %v", err)
	}
	return table
}

// lookupAirport resolves a 1-3 character code to its airport info.
func lookupAirport(code string) (airportInfo, bool) {
	info, ok := airportTable[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}
