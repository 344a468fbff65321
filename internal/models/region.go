package models

import "strings"

// NationalRegion is the token used for region-less (country-wide) scopes in
// cache keys and package names, so national and regional entries never collide.
const NationalRegion = "national"

// RegionScope identifies an independent version timeline and cache partition:
// a 2-letter ISO country code plus an optional subdivision code.
type RegionScope struct {
	CountryCode string
	RegionCode  string
}

func NewRegionScope(country, region string) RegionScope {
	return RegionScope{CountryCode: country, RegionCode: region}
}

// Key returns the normalized partition key, e.g. "FR:national" or "FR:IDF".
func (s RegionScope) Key() string {
	return s.CountryCode + ":" + s.RegionOrNational()
}

func (s RegionScope) RegionOrNational() string {
	if s.RegionCode == "" {
		return NationalRegion
	}
	return s.RegionCode
}

// PackageSuffix returns the lowercased scope part of a package file name,
// e.g. "fr" or "fr-idf".
func (s RegionScope) PackageSuffix() string {
	if s.RegionCode == "" {
		return strings.ToLower(s.CountryCode)
	}
	return strings.ToLower(s.CountryCode) + "-" + strings.ToLower(s.RegionCode)
}

func (s RegionScope) String() string {
	return s.Key()
}
