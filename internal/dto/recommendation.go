package dto

// FilterThresholdsRequest carries the optional minimums as text, exactly as lecturers submit them.
// An empty field leaves that dimension unconstrained.
type FilterThresholdsRequest struct {
	MinGrade         string `json:"minGrade"`
	MinRating        string `json:"minRating"`
	MinAverageRating string `json:"minAverageRating"`
	MinExperience    string `json:"minExperience"`
}

// AutoRejectResult reports what a bulk rejection did.
type AutoRejectResult struct {
	CourseCode string   `json:"courseCode"`
	Kept       []string `json:"kept"`
	Rejected   []string `json:"rejected"`
}
