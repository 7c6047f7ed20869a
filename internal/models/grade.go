package models

import "time"

// Grade defines the surveillance quota attached to an academic rank.
// Rank orders seniority: lower values are more senior and win the
// responsible-supervisor priority rule.
type Grade struct {
	Code             string    `db:"code" json:"code"`
	DisplayName      string    `db:"display_name" json:"display_name"`
	Rank             int       `db:"rank" json:"rank"`
	MaxSurveillances int       `db:"max_surveillances" json:"max_surveillances"`
	MinSurveillances int       `db:"min_surveillances" json:"min_surveillances"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
