package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"treasury-book-engine/pkg/bond"
)

// LoadPV01Table reads a CUSIP -> PV01 value map from a YAML file shaped like:
//
//	912828M80: 0.295
//	912828M81: 0.102
func LoadPV01Table(path string) (map[string]float64, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read pv01 table %s: %w", path, err)
	}

	// viper folds every key to lower case; CUSIPs are upper-case, so keys
	// are restored to upper case before use.
	raw := v.AllSettings()
	table := make(map[string]float64, len(raw))
	for cusip, val := range raw {
		f, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("pv01 table %s: value for %s is not a number", path, cusip)
		}
		table[strings.ToUpper(cusip)] = f
	}
	return table, nil
}

// LoadSectors reads the bucketed-sector membership table from a YAML file
// shaped like:
//
//	front_end: [CUSIP1, CUSIP2]
//	belly: [CUSIP3, CUSIP4]
//	long_end: [CUSIP5, CUSIP6]
func LoadSectors(path string) ([]bond.BucketedSector, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read sectors table %s: %w", path, err)
	}

	sectors := make([]bond.BucketedSector, 0, 3)
	for _, name := range []bond.Sector{bond.FrontEnd, bond.Belly, bond.LongEnd} {
		products := v.GetStringSlice(string(name))
		sectors = append(sectors, bond.BucketedSector{Name: name, Products: products})
	}
	return sectors, nil
}
