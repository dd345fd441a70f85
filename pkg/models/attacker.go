package models

import "time"

// Unknown is stored for location fields the feed does not provide.
const Unknown = "N/A"

// Location is the geographic part of an attacker record.
type Location struct {
	CountryCode string `bson:"country_code" json:"country_code"`
	CountryName string `bson:"country_name" json:"country_name"`
	City        string `bson:"city" json:"city"`
}

// UnknownLocation returns a location with every field set to Unknown.
func UnknownLocation() Location {
	return Location{CountryCode: Unknown, CountryName: Unknown, City: Unknown}
}

// AttackerRecord is one row of the DShield top attackers feed.
type AttackerRecord struct {
	IPAddress          string    `bson:"ip_address" json:"ip_address"`
	Reports            int       `bson:"reports" json:"reports"`
	Targets            int       `bson:"targets" json:"targets"`
	Attacks            int       `bson:"attacks" json:"attacks"`
	FirstSeen          time.Time `bson:"first_seen" json:"first_seen"`
	LastSeen           time.Time `bson:"last_seen" json:"last_seen"`
	Location           Location  `bson:"location" json:"location"`
	IngestionTimestamp time.Time `bson:"ingestion_timestamp" json:"ingestion_timestamp"`
}

func (AttackerRecord) SQLColumns() []Column {
	return []Column{
		{Name: "ip_address", Type: "NVARCHAR(64) NOT NULL"},
		{Name: "reports", Type: "INT NOT NULL"},
		{Name: "targets", Type: "INT NOT NULL"},
		{Name: "attacks", Type: "INT NOT NULL"},
		{Name: "first_seen", Type: "DATETIME2 NOT NULL"},
		{Name: "last_seen", Type: "DATETIME2 NOT NULL"},
		{Name: "country_code", Type: "NVARCHAR(16) NOT NULL"},
		{Name: "country_name", Type: "NVARCHAR(128) NOT NULL"},
		{Name: "city", Type: "NVARCHAR(256) NOT NULL"},
		{Name: "ingestion_timestamp", Type: "DATETIME2 NOT NULL"},
	}
}

func (r AttackerRecord) SQLValues() []interface{} {
	return []interface{}{
		r.IPAddress,
		r.Reports,
		r.Targets,
		r.Attacks,
		r.FirstSeen,
		r.LastSeen,
		r.Location.CountryCode,
		r.Location.CountryName,
		r.Location.City,
		r.IngestionTimestamp,
	}
}
