package domain

import "time"

// JobName identifies a batch correction job.
type JobName string

const (
	JobCostBackfill      JobName = "cost-backfill"
	JobShippingBackfill  JobName = "shipping-backfill"
	JobRepairIncomplete  JobName = "repair-incomplete"
	JobRecomputeCosts    JobName = "recompute-costs"
	JobRecomputeShipping JobName = "recompute-shipping"
	JobImportOrders      JobName = "import-orders"
	JobReset             JobName = "reset"
)

// AllJobs lists every job runnable by name.
var AllJobs = []JobName{
	JobCostBackfill,
	JobShippingBackfill,
	JobRepairIncomplete,
	JobRecomputeCosts,
	JobRecomputeShipping,
	JobImportOrders,
	JobReset,
}

// ParseJobName returns the job for name.
func ParseJobName(name string) (JobName, bool) {
	for _, j := range AllJobs {
		if string(j) == name {
			return j, true
		}
	}
	return "", false
}

// JobReport summarises one job run. Per-item failures are counted, not
// returned as errors.
type JobReport struct {
	Job         JobName       `json:"job"`
	Scanned     int           `json:"scanned"`
	Updated     int           `json:"updated"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	MissingSKUs []string      `json:"missing_skus,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Merge adds the counters of other into r. Used by chained jobs.
func (r *JobReport) Merge(other JobReport) {
	r.Scanned += other.Scanned
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.MissingSKUs = append(r.MissingSKUs, other.MissingSKUs...)
}

// CostCoverage reports how many recent orders have fully attributed costs.
type CostCoverage struct {
	Since           time.Time `json:"since"`
	TotalOrders     int64     `json:"total_orders"`
	MissingCost     int64     `json:"orders_missing_cost"`
	CompletePercent float64   `json:"complete_percent"`
}
