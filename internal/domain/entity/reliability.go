package entity

import (
	"strings"
	"time"
)

// AirlineReliability is one row of the reliability reference table: the
// minimum displayed seat count an airline's inventory must show before it is
// trusted, plus cabins exempt from reliability suppression (e.g. "JF").
type AirlineReliability struct {
	Code           string    `json:"code"`
	MinCount       int       `json:"minCount"`
	ExemptedCabins string    `json:"exemptedCabins"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Exempts reports whether the given cabin is exempt from suppression.
func (r *AirlineReliability) Exempts(cabin string) bool {
	return strings.Contains(r.ExemptedCabins, cabin)
}

// ReliabilityTable maps airline code to its reference entry.
type ReliabilityTable map[string]AirlineReliability
