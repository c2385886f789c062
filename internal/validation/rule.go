package validation

import "cardguard/internal/models"

// Rule checks the cross-field constraints of a rule that tags cannot express.
func (v *Validator) Rule(r *models.Rule) {
	v.Check(r.Condition.Valid(), "condition", "must be one of: EQUAL GREATER LESS_THAN NOT IS")
	v.Check(r.SuccessStatus.IsRuleOutcome(), "success_status", "must be 0, 1 or 2")
	v.NotBlank("location", r.Location)
	if r.Location != nil {
		v.MaxLength("location", *r.Location, 255)
	}

	v.Check((r.TimeStart == nil) == (r.TimeEnd == nil), "time_end", "time_start and time_end must be set together")
	for field, value := range map[string]*string{"time_start": r.TimeStart, "time_end": r.TimeEnd} {
		if value == nil {
			continue
		}
		_, err := models.ParseTimeOfDay(*value)
		v.Check(err == nil, field, "must be a time of day as HH:MM or HH:MM:SS")
	}
}
