package dto

// SolveRequest instructs the solver to build a duty roster for one dataset.
// Field names on the wire follow the historical planning client contract.
type SolveRequest struct {
	Semester            string  `json:"semester" validate:"required"`
	SessionType         string  `json:"session_type" validate:"required,oneof=principal makeup"`
	Policy              string  `json:"policy" validate:"omitempty,oneof=equal_quota weighted strict_max_quota"`
	MinPerRoom          int     `json:"min_surveillants_par_salle" validate:"omitempty,min=1"`
	AllowSingle         bool    `json:"allow_single_surveillant"`
	MaxTimeInSeconds    int     `json:"max_time_in_seconds" validate:"omitempty,min=60"`
	RelativeGapLimit    float64 `json:"relative_gap_limit" validate:"omitempty,gt=0,lt=1"`
	PreferenceWeight    float64 `json:"preference_weight" validate:"omitempty,gt=0"`
}

// SolveResponse reports the outcome of a solve run.
type SolveResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Policy         string   `json:"policy"`
	AssignmentsNum int      `json:"nb_affectations"`
	GenerationTime float64  `json:"temps_generation"`
	Objective      float64  `json:"objective"`
	Bound          float64  `json:"bound"`
	Gap            float64  `json:"gap"`
	Suboptimal     bool     `json:"suboptimal"`
	Warnings       []string `json:"warnings"`
}

// ResetRequest clears every assignment of one dataset.
type ResetRequest struct {
	Semester    string `json:"semester" validate:"required"`
	SessionType string `json:"session_type" validate:"required,oneof=principal makeup"`
}

// ResetResponse reports how many assignments were removed.
type ResetResponse struct {
	Deleted int64 `json:"deleted"`
}
